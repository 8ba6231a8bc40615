package version

// Version is the service version, overridden at build time with
// -ldflags "-X github.com/hrygo/searchviz/internal/version.Version=...".
var Version = "0.1.0"

// DevVersion is reported by non-production builds.
var DevVersion = "0.1.0-dev"

// GetCurrentVersion returns the version for the given mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}
