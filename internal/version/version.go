// Package version holds the build version string.
package version

// Version is set at build time via -ldflags "-X ...version.Version=v1.2.3".
var Version = "dev"

// String returns the version reported by status endpoints and logs.
func String() string {
	return Version
}
