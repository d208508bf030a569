package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.dat"))
	touch(t, filepath.Join(dir, "B.DAT"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.dat"), 0o755))

	paths, err := Discover(dir)
	require.NoError(t, err)

	// os.ReadDir orders by name, so uppercase sorts first. Directories
	// are skipped even when their name carries the extension.
	require.Equal(t, []string{
		filepath.Join(dir, "B.DAT"),
		filepath.Join(dir, "a.dat"),
	}, paths)
}

func TestDiscover_Empty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))

	paths, err := Discover(dir)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"))
	require.ErrorContains(t, err, "scan")
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "batch")
	require.NoError(t, os.Mkdir(sub, 0o755))
	touch(t, filepath.Join(sub, "a.dat"))
	touch(t, filepath.Join(sub, "b.dat"))

	loose := filepath.Join(dir, "loose.dat")
	touch(t, loose)

	paths, err := Resolve([]string{loose, sub})
	require.NoError(t, err)
	require.Equal(t, []string{
		loose,
		filepath.Join(sub, "a.dat"),
		filepath.Join(sub, "b.dat"),
	}, paths)
}

func TestResolve_PassesFilesThrough(t *testing.T) {
	// Explicit file arguments are not filtered by extension; the caller
	// asked for them.
	dir := t.TempDir()
	path := filepath.Join(dir, "renamed.bin")
	touch(t, path)

	paths, err := Resolve([]string{path})
	require.NoError(t, err)
	require.Equal(t, []string{path}, paths)
}

func TestResolve_MissingArg(t *testing.T) {
	_, err := Resolve([]string{filepath.Join(t.TempDir(), "absent.dat")})
	require.ErrorContains(t, err, "resolve")
}
