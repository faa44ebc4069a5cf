// Package listing enumerates input files for directory-mode commands.
package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Files returns the regular files directly under dir carrying the given
// extension (without dot), sorted for deterministic processing order.
func Files(dir, ext string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*."+ext))
	if err != nil {
		return nil, fmt.Errorf("invalid extension pattern %q: %w", ext, err)
	}

	files := make([]string, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

// Walk returns every file with the given extension under root, recursively,
// sorted. Unreadable subtrees are skipped rather than failing the walk.
func Walk(root, ext string) ([]string, error) {
	suffix := "." + strings.ToLower(ext)
	var files []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Subdirs returns the immediate subdirectories of dir, sorted.
func Subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}
