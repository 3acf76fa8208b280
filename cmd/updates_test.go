package cmd

import "testing"

func TestMarkUpdates(t *testing.T) {
	services := []Service{
		{ID: "chat", Version: "1.0.0"},
		{ID: "vision", Version: "2.0.0", UpdateAvailable: true},
		{ID: "embed", Version: "dev"},
	}
	catalog := map[string]string{
		"chat":   "1.1.0", // newer
		"vision": "2.0.0", // same; clears the daemon's flag
		"embed":  "3.0.0", // installed version not semver
	}

	got := MarkUpdates(services, catalog)

	if !got[0].UpdateAvailable {
		t.Error("chat: UpdateAvailable = false, want true for newer catalog version")
	}
	if got[1].UpdateAvailable {
		t.Error("vision: UpdateAvailable = true, want false for same version")
	}
	if got[2].UpdateAvailable {
		t.Error("embed: UpdateAvailable = true, want false for non-semver install")
	}

	// Input slice is not mutated
	if services[0].UpdateAvailable {
		t.Error("MarkUpdates mutated its input")
	}
}

func TestMarkUpdatesMissingFromCatalog(t *testing.T) {
	services := []Service{{ID: "chat", Version: "1.0.0", UpdateAvailable: true}}

	got := MarkUpdates(services, map[string]string{"other": "9.9.9"})
	if !got[0].UpdateAvailable {
		t.Error("service missing from catalog lost its daemon-reported flag")
	}

	// Empty catalog returns the input unchanged
	same := MarkUpdates(services, nil)
	if len(same) != 1 || !same[0].UpdateAvailable {
		t.Error("MarkUpdates with nil catalog altered services")
	}
}
