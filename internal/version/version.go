// Package version carries build metadata injected with -ldflags "-X".
package version

import "fmt"

var (
	// Version is the release version.
	Version = "0.3.0"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// GitCommit is the short commit hash.
	GitCommit = "unknown"
)

// String formats the build metadata for the startup banner and About text.
func String() string {
	return fmt.Sprintf("v%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
