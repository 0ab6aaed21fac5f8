// Package version carries the agent's build identity. Release builds
// stamp these through -ldflags -X; a plain go build reports dev.
package version

import "fmt"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the short git SHA.
	Commit = "unknown"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// String formats the full identity as reported on startup and over the
// status endpoint.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}
