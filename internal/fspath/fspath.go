// pattern: Functional Core

// Package fspath turns user-supplied paths into absolute, OS-native ones.
package fspath

import (
	"os"
	"path/filepath"
	"strings"
)

const homeMarker = "~"

// Resolve expands a leading ~ to the user's home directory and makes
// everything else absolute against the working directory.
func Resolve(p string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = string(filepath.Separator)
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = string(filepath.Separator)
	}
	return ResolveFrom(p, home, cwd)
}

// ResolveFrom is Resolve with the home and working directories supplied.
// The remainder after ~ is always joined under home, so "~/x" and "~x"
// both land inside it.
func ResolveFrom(p, home, cwd string) string {
	if strings.HasPrefix(p, homeMarker) {
		rest := strings.TrimPrefix(p, homeMarker)
		return filepath.Join(home, filepath.FromSlash(rest))
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}

// Exists reports whether any filesystem entry is present at p.
func Exists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

// HasSuffixFold reports whether p ends with suffix, ignoring case.
func HasSuffixFold(p, suffix string) bool {
	return len(p) >= len(suffix) && strings.EqualFold(p[len(p)-len(suffix):], suffix)
}
