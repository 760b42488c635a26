// pattern: Imperative Shell

package launch

import "fourddev/internal/fspath"

// Required suffixes, compared case-insensitively.
const (
	ProjectSuffix = ".4dproject"
	MethodSuffix  = ".4dm"
)

// EnsureExists fails with a *NotFoundError when nothing exists at path.
func EnsureExists(path string) error {
	if !fspath.Exists(path) {
		return &NotFoundError{Path: path}
	}
	return nil
}

func requireExtension(path, suffix string) error {
	if !fspath.HasSuffixFold(path, suffix) {
		return &ExtensionError{Path: path, Suffix: suffix}
	}
	return nil
}

// resolveTarget resolves p, then checks existence and suffix in that order.
func resolveTarget(p, suffix string) (string, error) {
	fp := fspath.Resolve(p)
	if err := EnsureExists(fp); err != nil {
		return "", err
	}
	if err := requireExtension(fp, suffix); err != nil {
		return "", err
	}
	return fp, nil
}
