package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Discover returns the DAT files directly inside dir, matched by a
// case-insensitive .dat extension. Paths come back joined with dir in
// the lexicographic name order os.ReadDir guarantees, so discovery is
// stable across runs.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.EqualFold(filepath.Ext(entry.Name()), ".dat") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	return paths, nil
}

// Resolve expands command line arguments into input paths: directory
// arguments are expanded through Discover, file arguments pass through
// unchanged. Argument order is preserved.
func Resolve(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		found, err := Discover(arg)
		if err != nil {
			return nil, err
		}

		paths = append(paths, found...)
	}

	return paths, nil
}
