// Package version holds the tool version stamped into summaries.
package version

// Version is overridden at build time with -ldflags "-X seekone/internal/version.Version=...".
var Version = "0.1.0"
