// Package version carries the build identity, stamped at link time via
//
//	-ldflags "-X github.com/viktorklochkov/PFSimple/internal/version.Version=v1.0.0"
package version

import "fmt"

var (
	// Version is the release tag, "dev" for unstamped builds.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// String renders the stamp on one line for -version output.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitSHA, BuildTime)
}
