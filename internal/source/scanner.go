// Package source discovers and parses subscription import files.
package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var extFormats = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
}

// FormatFor returns the import format for a file name, if it has one.
func FormatFor(name string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(name))]
	return f, ok
}

// ScanDir walks dir and discovers every import file, sorted by path.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if f, ok := FormatFor(dir); ok {
			return []DiscoveredFile{{Path: dir, Format: f}}, nil
		}
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		f, ok := FormatFor(d.Name())
		if !ok {
			return nil
		}
		files = append(files, DiscoveredFile{Path: path, Format: f})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}
