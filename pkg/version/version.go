package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var Version string

// Commit is set at build time with -ldflags "-X .../pkg/version.Commit=<sha>"
var Commit = ""

// Get returns the current version of the application
func Get() string {
	v := strings.TrimSpace(Version)
	if Commit != "" {
		return v + "+" + Commit
	}
	return v
}
