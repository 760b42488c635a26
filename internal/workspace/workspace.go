// pattern: Imperative Shell

package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"fourddev/internal/fspath"
)

const (
	// DefaultLimit caps how many projects a workspace-wide search returns.
	DefaultLimit = 10

	projectDir     = "Project"
	projectPattern = "**/*.4DProject"
	excludedDir    = "node_modules"
	projectSuffix  = ".4dproject"
)

var errLimitReached = errors.New("limit reached")

// FindProjects looks for .4DProject files under roots. Files directly in a
// root's Project folder win; only when none exist is every root searched
// recursively, skipping node_modules and stopping after limit results.
func FindProjects(roots []string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var found []string
	for _, root := range roots {
		found = append(found, projectFolderFiles(root)...)
	}
	if len(found) > 0 {
		return found, nil
	}

	for _, root := range roots {
		remaining := limit - len(found)
		if remaining <= 0 {
			break
		}
		matches, err := globProjects(root, remaining)
		if err != nil {
			return found, err
		}
		found = append(found, matches...)
	}
	return found, nil
}

// projectFolderFiles lists .4DProject files directly inside root/Project.
func projectFolderFiles(root string) []string {
	dir := filepath.Join(root, projectDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if fspath.HasSuffixFold(entry.Name(), projectSuffix) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files
}

func globProjects(root string, limit int) ([]string, error) {
	var matches []string
	err := doublestar.GlobWalk(os.DirFS(root), projectPattern, func(p string, d fs.DirEntry) error {
		if d.IsDir() || inExcludedDir(p) {
			return nil
		}
		matches = append(matches, filepath.Join(root, filepath.FromSlash(p)))
		if len(matches) >= limit {
			return errLimitReached
		}
		return nil
	}, doublestar.WithCaseInsensitive())
	if err != nil && !errors.Is(err, errLimitReached) {
		return matches, err
	}
	return matches, nil
}

func inExcludedDir(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == excludedDir {
			return true
		}
	}
	return false
}
