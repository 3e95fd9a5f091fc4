// Package buildinfo exposes version metadata stamped at build time via
// -ldflags "-X provctl/internal/support/buildinfo.Version=...".
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
)
