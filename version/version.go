// version/version.go
package version

import (
	"fmt"
	"runtime"
)

// These variables are meant to be set at build time using ldflags:
//
//	go build -ldflags "-X github.com/dalemusser/marketplace-init/version.Version=1.0.0 \
//	                   -X github.com/dalemusser/marketplace-init/version.Commit=abc123 \
//	                   -X github.com/dalemusser/marketplace-init/version.BuildTime=2024-01-15T10:30:00Z"
var (
	// Version is the semantic version of the application (e.g., "1.2.3").
	Version = "dev"

	// Commit is the git commit SHA at build time.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built (RFC3339 format).
	BuildTime = "unknown"
)

// Info contains version and build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String returns a human-readable version string.
//
// Example output: "1.2.3 (abc123, built 2024-01-15T10:30:00Z)"
func String() string {
	if Version == "dev" {
		return "dev"
	}
	return Version + " (" + Commit + ", built " + BuildTime + ")"
}

// Long is String plus the Go toolchain and platform, for `version` output.
func Long() string {
	i := Get()
	return fmt.Sprintf("%s %s %s/%s", String(), i.GoVersion, i.OS, i.Arch)
}
