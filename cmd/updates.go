package cmd

import (
	"github.com/aideck/cli/cmd/version"
)

// MarkUpdates recomputes each service's update-available flag against a
// catalog of latest known versions (id -> version). Services missing from
// the catalog keep whatever flag the daemon reported.
func MarkUpdates(services []Service, catalog map[string]string) []Service {
	if len(catalog) == 0 {
		return services
	}
	out := make([]Service, len(services))
	copy(out, services)
	for i := range out {
		latest, ok := catalog[out[i].ID]
		if !ok {
			continue
		}
		out[i].UpdateAvailable = version.ServiceUpdateAvailable(out[i].Version, latest)
	}
	return out
}
