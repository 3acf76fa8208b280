package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aideck/cli/cmd/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the Aideck CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aideck %s\n", version.FormatVersionForDisplay(version.CurrentVersion))

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return
		}

		info, err := version.MaybeCheckForUpgrade(true)
		if err != nil {
			OutputError("Failed to check for updates: %v\n", err)
			os.Exit(1)
		}
		if info == nil || !info.UpdateAvailable {
			OutputSuccess("You are on the latest version.\n")
			return
		}
		fmt.Printf("A newer release (%s) is available: %s\n", info.LatestVersion, info.ReleaseURL)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
}
