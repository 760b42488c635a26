// pattern: Functional Core

package launch

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrUnsupportedPlatform is returned on any host other than macOS.
	ErrUnsupportedPlatform = errors.New("this tool currently supports macOS only")

	// ErrNotFound means a required input path does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidExtension means a path exists but has the wrong suffix.
	ErrInvalidExtension = errors.New("invalid file extension")

	// ErrProcessSpawn means the opener could not be started at all.
	ErrProcessSpawn = errors.New("failed to start opener")

	// ErrProcessExitNonZero means the opener ran and reported failure.
	ErrProcessExitNonZero = errors.New("opener exited with non-zero status")

	// ErrNoMethodPaths is returned when OpenMethod receives no paths.
	ErrNoMethodPaths = errors.New("methodPaths must contain at least one .4dm file")

	// ErrNotFourDFile is returned by OpenFile for anything that is neither
	// a method nor a project descriptor.
	ErrNotFourDFile = errors.New("not a 4D file")
)

// NotFoundError reports a missing input path.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "File not found: " + e.Path
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ExtensionError reports a path without the suffix an operation requires.
type ExtensionError struct {
	Path   string
	Suffix string
}

func (e *ExtensionError) Error() string {
	switch e.Suffix {
	case ProjectSuffix:
		return "projectPath must point to a .4DProject file"
	case MethodSuffix:
		return "Not a .4dm file: " + e.Path
	default:
		return fmt.Sprintf("%s must end with %s", e.Path, e.Suffix)
	}
}

func (e *ExtensionError) Is(target error) bool {
	return target == ErrInvalidExtension
}

// SpawnError wraps the OS error that prevented the opener from starting.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return "failed to start open: " + e.Err.Error()
}

func (e *SpawnError) Unwrap() []error {
	return []error{ErrProcessSpawn, e.Err}
}

// ExitError carries the opener's non-zero exit status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("open exited with code %d", e.Code)
}

func (e *ExitError) Is(target error) bool {
	return target == ErrProcessExitNonZero
}

// UnsupportedFileError reports a file OpenFile cannot dispatch.
type UnsupportedFileError struct {
	Path string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("File %q is not a 4D file (.4dm or .4DProject)", filepath.Base(e.Path))
}

func (e *UnsupportedFileError) Is(target error) bool {
	return target == ErrNotFourDFile
}
