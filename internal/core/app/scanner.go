package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"corocheck/internal/core/errors"
	"corocheck/internal/engine/parser"
)

// Discover expands paths into the Python files to analyze. Files named
// explicitly are kept even when an exclude pattern matches them; directories
// are walked with the exclude filter applied.
func (a *App) Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "stat input"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			if !parser.IsSupportedPath(root) {
				return nil, errors.AddContext(
					errors.New(errors.CodeNotSupported, fmt.Sprintf("not a Python source file (expected %v)", parser.SupportedExtensions())),
					errors.CtxPath, root)
			}
			add(root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && a.filter.ExcludeDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !a.filter.ExcludeFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "walk input"), errors.CtxPath, root)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}
