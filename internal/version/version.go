// Package version carries build metadata, set with -ldflags at link time:
//
//	go build -ldflags "-X github.com/banshee-data/particleflow/internal/version.Version=v0.3.0" ./cmd/tools/cluster-display
package version

import "fmt"

var (
	// Version is the release tag of the clustering tools
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String formats the build metadata for a -version flag.
func String(tool string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", tool, Version, GitSHA, BuildTime)
}
