package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "aideck.yaml"), `
version: "1"
daemon_url: http://localhost:9999
registry:
  url: https://registry.example.com
  versions:
    chat: 1.2.0
dashboard:
  hide_coming_soon: true
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DaemonURL != "http://localhost:9999" {
		t.Errorf("DaemonURL = %q", cfg.DaemonURL)
	}
	if cfg.Registry.URL != "https://registry.example.com" {
		t.Errorf("Registry.URL = %q", cfg.Registry.URL)
	}
	if cfg.Registry.Versions["chat"] != "1.2.0" {
		t.Errorf("Registry.Versions[chat] = %q", cfg.Registry.Versions["chat"])
	}
	if !cfg.Dashboard.HideComingSoon {
		t.Error("Dashboard.HideComingSoon = false")
	}
}

func TestLoadConfigTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "aideck.toml"), `
version = "1"
daemon_url = "http://localhost:54321"

[dashboard]
no_emoji = true
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DaemonURL != "http://localhost:54321" {
		t.Errorf("DaemonURL = %q", cfg.DaemonURL)
	}
	if !cfg.Dashboard.NoEmoji {
		t.Error("Dashboard.NoEmoji = false")
	}
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "aideck.json"), `{"daemon_url": "http://localhost:1234"}`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DaemonURL != "http://localhost:1234" {
		t.Errorf("DaemonURL = %q", cfg.DaemonURL)
	}
}

func TestFindConfigFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "aideck.toml"), "")
	writeFile(t, filepath.Join(dir, "aideck.yaml"), "")

	found, err := FindConfigFile(dir)
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}
	if filepath.Base(found) != "aideck.yaml" {
		t.Errorf("FindConfigFile() = %q, want aideck.yaml preferred", found)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("LoadConfig() error = nil for empty directory")
	}
	if _, err := LoadConfig(""); err == nil {
		t.Error("LoadConfig() error = nil for empty path")
	}
}

func TestLoadConfigFileBadContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aideck.yaml")
	writeFile(t, path, "daemon_url: [unclosed")

	if _, err := LoadConfigFile(path); err == nil {
		t.Error("LoadConfigFile() error = nil for invalid YAML")
	}

	unsupported := filepath.Join(dir, "aideck.ini")
	writeFile(t, unsupported, "")
	if _, err := LoadConfigFile(unsupported); err == nil {
		t.Error("LoadConfigFile() error = nil for unsupported extension")
	}
}

func TestIsConfigFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/some/dir/aideck.yaml", true},
		{"/some/dir/aideck.yml", true},
		{"aideck.toml", true},
		{"aideck.json", true},
		{"/some/dir/other.yaml", false},
		{"aideck.txt", false},
	}
	for _, tt := range tests {
		if got := IsConfigFile(tt.path); got != tt.want {
			t.Errorf("IsConfigFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "aideck.yaml")
	want := &AideckConfig{
		Version:   "1",
		DaemonURL: "http://localhost:54321",
		Dashboard: DashboardConfig{HideComingSoon: true},
	}

	if err := SaveConfig(want, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if got.DaemonURL != want.DaemonURL || got.Dashboard.HideComingSoon != want.Dashboard.HideComingSoon {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
