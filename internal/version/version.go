package version

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
)

// Version information - updated during releases
// This will be overridden at build time using -ldflags
var (
	// Version is the current version of the CLI
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// BuildDate is when the binary was built
	BuildDate = "unknown"
)

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return fmt.Sprintf("dropzone %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// IsRelease reports whether Version is a semantic version rather than a
// development build. Pre-release tags such as 1.2.0-rc.1 are not releases.
func IsRelease() bool {
	v, err := goversion.NewSemver(Version)
	if err != nil {
		return false
	}
	return v.Prerelease() == ""
}
