package cmd

import (
	"github.com/spf13/cobra"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aideck/cli/cmd/config"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive service dashboard",
	Long: `Open a terminal dashboard showing every managed AI service as a card.

The dashboard first verifies that Docker and the aideck daemon are
running, then lets you browse, start, stop, and refresh services.`,
	Run: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) {
	hideComingSoon := false
	var versionCatalog map[string]string
	if cfg, err := config.LoadConfig(getEffectiveCWD()); err == nil {
		hideComingSoon = cfg.Dashboard.HideComingSoon
		versionCatalog = cfg.Registry.Versions
		if cfg.Dashboard.NoEmoji {
			SetEmojiEnabled(false)
		}
	}

	// Keep local and data-dir config copies in sync while the dashboard runs.
	StartConfigWatcherForCommand()

	client := newDaemonClient()
	store := NewStore(client)
	gate := NewReadinessGate(defaultProbes(client))
	manager := NewDockerServiceManager(effectiveDaemonURL())

	m := newDashboardModel(store, gate, manager, hideComingSoon, versionCatalog)
	p := tea.NewProgram(m, tea.WithAltScreen())

	SetTUIMode(p)
	defer ClearTUIMode()

	if _, err := p.Run(); err != nil {
		OutputError("Error running dashboard: %v\n", err)
	}
}
