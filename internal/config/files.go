package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FindFiles expands paths into the files accepted by match. Directories are
// walked in lexical order; a file named directly is kept only if it matches.
// Every path must exist, and each file is returned once.
func FindFiles(paths []string, match func(path string) bool) ([]string, error) {
	var found []string
	seen := make(map[string]struct{})
	keep := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		found = append(found, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", root, err)
		}
		if !info.IsDir() {
			if match(root) {
				keep(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && match(p) {
				keep(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return found, nil
}
