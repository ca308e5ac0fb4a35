package version

// These are set by the build system using -ldflags.
var (
	Version   = "unknown"
	GitCommit = "unknown"
)
