// Package workspace finds shader sources on disk.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.lsp.dev/uri"

	"hlsllint/internal/common/fsutil"
)

// ShaderExts are the extensions picked up when a directory is scanned.
var ShaderExts = []string{".hlsl", ".hlsli", ".fx", ".fxh", ".ush", ".usf"}

// File is a shader found on disk.
type File struct {
	// Path is absolute.
	Path string
	URI  string
}

// Discover resolves args to shader files. Files are taken as given whatever
// their extension; directories are walked recursively for ShaderExts, skipping
// hidden directories. The result is sorted by path and free of duplicates.
func Discover(args []string) ([]File, error) {
	seen := make(map[string]bool)
	var files []File
	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		files = append(files, File{Path: p, URI: string(uri.File(p))})
	}

	for _, arg := range args {
		base, err := fsutil.ExpandHome(arg)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(base)
		if err != nil {
			return nil, fmt.Errorf("abs path: %w", err)
		}
		if !fsutil.IsDir(abs) {
			if _, err := os.Stat(abs); err != nil {
				return nil, fmt.Errorf("stat %s: %w", arg, err)
			}
			add(abs)
			continue
		}
		err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != abs && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if fsutil.HasExt(p, ShaderExts) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	slices.SortFunc(files, func(a, b File) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}
