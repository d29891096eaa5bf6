package main

import (
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/utkarsh5026/imgpool/loader"
)

// collectImages walks root and returns every file the loader accepts, sorted.
// Unreadable subdirectories are skipped.
func collectImages(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() && loader.IsSupported(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)
	return paths, nil
}
