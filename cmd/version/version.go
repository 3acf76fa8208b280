package version

import (
	"strings"

	"github.com/aideck/cli/internal/buildinfo"
)

// CurrentVersion is defined in internal/buildinfo to avoid import cycles
var CurrentVersion = buildinfo.CurrentVersion

// FormatVersionForDisplay normalizes a version string for consistent display.
// It ensures the version has a "v" prefix while avoiding double prefixes.
// Examples: "v1.0.0" -> "v1.0.0", "1.0.0" -> "v1.0.0", "" -> "unknown"
func FormatVersionForDisplay(version string) string {
	if version == "" {
		return "unknown"
	}
	normalized := strings.TrimPrefix(strings.TrimPrefix(version, "v"), "V")
	return "v" + normalized
}
