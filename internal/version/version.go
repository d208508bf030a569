// Package version exposes the build metadata stamped through ldflags.
package version

// Set at build time through -ldflags "-X github.com/jhh67/extractdat/internal/version.Version=...".
var (
	// Version is the release version.
	Version = ""
	// Commit is the git commit hash.
	Commit = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version string
	Commit  string
}

// Resolve returns the stamped metadata, falling back to "dev" when the
// binary was built without ldflags.
func Resolve() Info {
	info := Info{Version: Version, Commit: Commit}
	if info.Version == "" {
		info.Version = "dev"
	}

	return info
}

// String renders the metadata as "version" or "version (commit)".
func String() string {
	info := Resolve()
	if info.Commit == "" {
		return info.Version
	}

	return info.Version + " (" + shortCommit(info.Commit) + ")"
}

func shortCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}

	return commit[:12]
}
