package config

// Config file constants (searched in this order)
var (
	// SupportedAideckConfigFiles lists all supported aideck config file names
	SupportedAideckConfigFiles = []string{
		"aideck.yaml",
		"aideck.yml",
		"aideck.toml",
		"aideck.json",
	}
)

// AideckConfig represents the complete aideck configuration
type AideckConfig struct {
	Version   string `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty"`
	DaemonURL string `yaml:"daemon_url,omitempty" toml:"daemon_url,omitempty" json:"daemon_url,omitempty"`

	// Registry holds the canonical service catalog location and pinned versions.
	Registry RegistryConfig `yaml:"registry,omitempty" toml:"registry,omitempty" json:"registry,omitempty"`

	// Dashboard tunes the TUI.
	Dashboard DashboardConfig `yaml:"dashboard,omitempty" toml:"dashboard,omitempty" json:"dashboard,omitempty"`
}

// RegistryConfig points at the service registry and optional per-service
// version pins used for update-available checks.
type RegistryConfig struct {
	URL      string            `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"`
	Versions map[string]string `yaml:"versions,omitempty" toml:"versions,omitempty" json:"versions,omitempty"`
}

// DashboardConfig represents dashboard (TUI) preferences
type DashboardConfig struct {
	HideComingSoon bool `yaml:"hide_coming_soon,omitempty" toml:"hide_coming_soon,omitempty" json:"hide_coming_soon,omitempty"`
	NoEmoji        bool `yaml:"no_emoji,omitempty" toml:"no_emoji,omitempty" json:"no_emoji,omitempty"`
}
