// Package buildinfo holds version metadata injected at build time.
package buildinfo

// Version information, set via ldflags at build time:
//
//	go build -ldflags "-X github.com/stacktools/stableset/pkg/buildinfo.Version=v1.0.0"
var (
	Version = "dev"     // semantic version
	Commit  = "unknown" // git commit SHA
	Date    = "unknown" // build timestamp
)
