package buildinfo

// Set at build time:
//
//	-X 'github.com/m3rciful/themebot/core/buildinfo.Version=v0.4.0'
//	-X 'github.com/m3rciful/themebot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/themebot/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version reports the release tag of the build.
	Version = "dev"
	// Commit reports the source revision used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// Summary returns "version (commit, date)" for CLI and health output.
func Summary() string {
	if Date == "" {
		return Version + " (" + Commit + ")"
	}
	return Version + " (" + Commit + ", " + Date + ")"
}
