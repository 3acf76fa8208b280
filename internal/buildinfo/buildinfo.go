// Package buildinfo holds build-time version metadata. CurrentVersion is
// overridden at release time via -ldflags "-X ...buildinfo.CurrentVersion=v1.2.3".
package buildinfo

// CurrentVersion is the CLI version. "dev" for local builds.
var CurrentVersion = "dev"
