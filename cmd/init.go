package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aideck/cli/cmd/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an aideck config file in the current directory",
	Long: `Write a starter aideck.yaml into the working directory. An existing
config file is never overwritten.`,
	Run: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	cwd := getEffectiveCWD()

	if existing, err := config.FindConfigFile(cwd); err == nil {
		OutputWarning("Config file already exists: %s\n", existing)
		return
	}

	cfg := &config.AideckConfig{
		Version:   "1",
		DaemonURL: defaultDaemonURL,
	}

	path := filepath.Join(cwd, "aideck.yaml")
	if err := config.SaveConfig(cfg, path); err != nil {
		OutputError("Failed to write config: %v\n", err)
		os.Exit(1)
	}

	OutputSuccess("Created %s\n", path)
	fmt.Println("Next: run 'aideck doctor' to verify your setup.")
}
