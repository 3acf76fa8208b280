package version

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestServiceUpdateAvailable(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		latest    string
		want      bool
	}{
		{"newer patch", "1.2.3", "1.2.4", true},
		{"newer minor", "1.2.3", "1.3.0", true},
		{"same version", "1.2.3", "1.2.3", false},
		{"older registry version", "1.2.3", "1.2.2", false},
		{"v prefix accepted", "v1.0.0", "v2.0.0", true},
		{"mixed prefixes", "1.0.0", "v1.0.1", true},
		{"installed not semver", "dev", "1.0.0", false},
		{"latest not semver", "1.0.0", "latest", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ServiceUpdateAvailable(tt.installed, tt.latest); got != tt.want {
				t.Errorf("ServiceUpdateAvailable(%q, %q) = %v, want %v", tt.installed, tt.latest, got, tt.want)
			}
		})
	}
}

func TestNormalizeForSemver(t *testing.T) {
	tests := []struct {
		raw        string
		normalized string
		parses     bool
	}{
		{"v1.2.3", "1.2.3", true},
		{"V1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.3", true},
		{"  1.0.0  ", "1.0.0", true},
		{"dev", "dev", false},
		{"", "", false},
	}

	for _, tt := range tests {
		normalized, parsed := normalizeForSemver(tt.raw)
		if normalized != tt.normalized {
			t.Errorf("normalizeForSemver(%q) normalized = %q, want %q", tt.raw, normalized, tt.normalized)
		}
		if (parsed != nil) != tt.parses {
			t.Errorf("normalizeForSemver(%q) parsed = %v, want parses=%v", tt.raw, parsed, tt.parses)
		}
	}
}

func TestShouldCheckForUpgrade(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !shouldCheckForUpgrade(now, upgradeState{}) {
		t.Error("shouldCheckForUpgrade() = false for zero state, want true")
	}
	recent := upgradeState{LastChecked: now.Add(-time.Hour)}
	if shouldCheckForUpgrade(now, recent) {
		t.Error("shouldCheckForUpgrade() = true within interval, want false")
	}
	stale := upgradeState{LastChecked: now.Add(-upgradeCheckInterval - time.Minute)}
	if !shouldCheckForUpgrade(now, stale) {
		t.Error("shouldCheckForUpgrade() = false past interval, want true")
	}
}

func TestUpgradeStateRoundTrip(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nested", "upgrade_state.json")
	t.Setenv(upgradeStateEnvVar, statePath)

	state, path, err := readUpgradeState()
	if err != nil {
		t.Fatalf("readUpgradeState() error = %v for missing file", err)
	}
	if path != statePath {
		t.Fatalf("readUpgradeState() path = %q, want %q", path, statePath)
	}
	if !state.LastChecked.IsZero() {
		t.Error("readUpgradeState() returned non-zero state for missing file")
	}

	want := upgradeState{
		LastChecked:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		LatestVersion: "v1.4.0",
	}
	if err := persistUpgradeState(path, want); err != nil {
		t.Fatalf("persistUpgradeState() error = %v", err)
	}

	state, _, err = readUpgradeState()
	if err != nil {
		t.Fatalf("readUpgradeState() error = %v", err)
	}
	if !state.LastChecked.Equal(want.LastChecked) || state.LatestVersion != want.LatestVersion {
		t.Errorf("readUpgradeState() = %+v, want %+v", state, want)
	}
}

func TestReadUpgradeStateCorruptFile(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "upgrade_state.json")
	t.Setenv(upgradeStateEnvVar, statePath)
	if err := os.WriteFile(statePath, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := readUpgradeState(); err == nil {
		t.Error("readUpgradeState() error = nil for corrupt file")
	}
}

func TestBuildUpgradeInfo(t *testing.T) {
	origVersion := CurrentVersion
	defer func() { CurrentVersion = origVersion }()

	published := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	release := &releaseInfo{
		TagName:     "v1.5.0",
		HTMLURL:     "https://example.com/releases/v1.5.0",
		PublishedAt: published,
		Body:        "  release notes  ",
	}

	t.Run("older install sees update", func(t *testing.T) {
		CurrentVersion = "1.4.0"
		info := buildUpgradeInfo(release)
		if !info.UpdateAvailable {
			t.Error("UpdateAvailable = false, want true")
		}
		if !info.CurrentVersionIsSemver {
			t.Error("CurrentVersionIsSemver = false, want true")
		}
		if info.LatestVersionNormalized != "1.5.0" {
			t.Errorf("LatestVersionNormalized = %q, want %q", info.LatestVersionNormalized, "1.5.0")
		}
		if info.ReleaseNotes != "release notes" {
			t.Errorf("ReleaseNotes = %q, want trimmed", info.ReleaseNotes)
		}
	})

	t.Run("dev build never sees update", func(t *testing.T) {
		CurrentVersion = "dev"
		info := buildUpgradeInfo(release)
		if info.UpdateAvailable {
			t.Error("UpdateAvailable = true for non-semver build")
		}
		if info.CurrentVersionIsSemver {
			t.Error("CurrentVersionIsSemver = true for dev build")
		}
	})
}

func TestMaybeCheckForUpgradeThrottled(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "upgrade_state.json")
	t.Setenv(upgradeStateEnvVar, statePath)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	origNow := timeNow
	timeNow = func() time.Time { return now }
	defer func() { timeNow = origNow }()

	data, _ := json.Marshal(upgradeState{LastChecked: now.Add(-time.Hour), LatestVersion: "v1.0.0"})
	if err := os.WriteFile(statePath, data, 0644); err != nil {
		t.Fatal(err)
	}

	// Within the interval and not forced: no network call, no result.
	info, err := MaybeCheckForUpgrade(false)
	if err != nil {
		t.Fatalf("MaybeCheckForUpgrade() error = %v", err)
	}
	if info != nil {
		t.Errorf("MaybeCheckForUpgrade() = %+v, want nil while throttled", info)
	}
}
