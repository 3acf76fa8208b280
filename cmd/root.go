package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aideck/cli/cmd/config"
)

var debug bool
var daemonURL string
var overrideCwd string

const defaultDaemonURL = "http://localhost:54321"

var rootCmd = &cobra.Command{
	Use:   "aideck",
	Short: "Aideck - a dashboard for local AI services",
	Long: `Aideck is a terminal dashboard and CLI for managing local AI services
running as containers. It talks to the Aideck daemon for service data and
to the Docker engine for runtime state.

Getting started:
  # Verify local prerequisites (docker, daemon, memory)
  aideck doctor

  # Open the dashboard
  aideck dashboard

  # Inspect service state from the command line
  aideck services status`,

	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior when no subcommand is specified
		fmt.Println("Welcome to Aideck!")
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Flags are parsed at this point; honor --debug
		if debug {
			InitDebugLogger("")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		CloseDebugLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&daemonURL, "daemon-url", "", "Aideck daemon URL (default: http://localhost:54321)")
	rootCmd.PersistentFlags().StringVar(&overrideCwd, "cwd", "", "Override the current working directory for CLI operations")
}

// effectiveDaemonURL resolves the daemon URL: flag, then AIDECK_DAEMON_URL,
// then the config file, then the built-in default.
func effectiveDaemonURL() string {
	if strings.TrimSpace(daemonURL) != "" {
		return daemonURL
	}
	if env := strings.TrimSpace(os.Getenv("AIDECK_DAEMON_URL")); env != "" {
		return env
	}
	if cfg, err := config.LoadConfig(getEffectiveCWD()); err == nil && cfg.DaemonURL != "" {
		return cfg.DaemonURL
	}
	return defaultDaemonURL
}

// getDataDir returns the directory to store Aideck data.
var getDataDir = func() (string, error) {
	dataDir := os.Getenv("AIDECK_DATA_DIR")
	if dataDir != "" {
		return dataDir, nil
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".aideck"), nil
	} else {
		return "", fmt.Errorf("getDataDir: could not determine home directory: %w", err)
	}
}

// getEffectiveCWD returns the directory to treat as the working directory.
// If the global --cwd flag is provided, it returns its absolute path; otherwise os.Getwd().
func getEffectiveCWD() string {
	if strings.TrimSpace(overrideCwd) != "" {
		if filepath.IsAbs(overrideCwd) {
			return overrideCwd
		}
		abs, err := filepath.Abs(overrideCwd)
		if err != nil {
			return "."
		}
		return abs
	}

	wd, _ := os.Getwd()
	if wd == "" {
		return "."
	}

	return wd
}
