package version

// Set at build time via -ldflags "-X github.com/pulinafi/lounge-desktop/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// AppName is the user-visible product name, also used for notification app ids.
const AppName = "The Lounge"

// Info returns "version (commit)".
func Info() string {
	return Version + " (" + Commit + ")"
}

// Full returns version, commit and build time.
func Full() string {
	return Version + " (commit: " + Commit + ", built: " + BuildTime + ")"
}

