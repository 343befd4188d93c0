// Package version holds build metadata injected via -ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X github.com/sydlexius/bassline/internal/version.Version=1.2.0 -X github.com/sydlexius/bassline/internal/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = "none"
)
