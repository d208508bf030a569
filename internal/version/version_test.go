package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve_DevFallback(t *testing.T) {
	restoreVersion, restoreCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = restoreVersion, restoreCommit })

	Version, Commit = "", ""
	require.Equal(t, "dev", Resolve().Version)
	require.Equal(t, "dev", String())
}

func TestString_ShortensCommit(t *testing.T) {
	restoreVersion, restoreCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = restoreVersion, restoreCommit })

	Version = "1.2.0"
	Commit = "0123456789abcdef0123"
	require.Equal(t, "1.2.0 (0123456789ab)", String())

	Commit = "abc123"
	require.Equal(t, "1.2.0 (abc123)", String())
}
