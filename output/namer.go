package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UniquePath returns a path under dir built from base and ext that does
// not collide with an existing file: dir/base+ext when that is free,
// otherwise dir/base-N+ext for the smallest free N >= 1. Existing files
// are never reused as targets.
//
// The probe is a point-in-time check, not a reservation. Callers that
// need exclusivity against concurrent writers must create the file with
// os.O_EXCL themselves.
func UniquePath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)

	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probe %s: %w", candidate, err)
		}

		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, n, ext))
	}
}
