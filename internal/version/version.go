// Package version holds build metadata, set with -ldflags "-X".
package version

var (
	Version = "1.0.0"
	Commit  = "unknown"
)
