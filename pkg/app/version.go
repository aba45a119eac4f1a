package app

import "fmt"

// Release metadata, overridable at link time:
//
//	go build -ldflags "-X github.com/japaniel/lexiquiz/pkg/app.Commit=$(git rev-parse --short HEAD)" ./cmd/lexiquiz
var (
	Version   = "0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is the line printed by lexiquiz -version.
func BuildVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)
}
