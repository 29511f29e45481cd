package env

const AppName = "jrecover"

// Set at build time with -ldflags "-X github.com/ostafen/jrecover/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
