package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// servicesCmd is the parent command for service management
var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Manage Aideck services",
	Long:  "Commands for managing and inspecting services registered with the Aideck daemon",
}

// servicesStatusCmd displays the status of all services
var servicesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check status of all Aideck services",
	Long: `Display the current status of all services without starting them.

For each service this shows:
  - Classified status (running, stopped, downloading, not_downloaded,
    coming_soon, error)
  - Whether the service is currently accessible from the dashboard
  - Container ID, image, port mappings and uptime where applicable

This is a read-only operation that never auto-starts services.`,
	Run: runServicesStatus,
}

// servicesStartCmd starts a service's container
var servicesStartCmd = &cobra.Command{
	Use:   "start <service-id>",
	Short: "Start an Aideck service",
	Long: `Start a service's container and wait for it to answer its health URL.

Examples:
  aideck services start whisper-tiny
  aideck services start llama-2-7b`,
	Args: cobra.ExactArgs(1),
	Run:  runServicesStart,
}

// servicesStopCmd stops a service's container
var servicesStopCmd = &cobra.Command{
	Use:   "stop <service-id>",
	Short: "Stop an Aideck service",
	Args:  cobra.ExactArgs(1),
	Run:   runServicesStop,
}

// servicesDownloadCmd pulls a service's image and creates its container
var servicesDownloadCmd = &cobra.Command{
	Use:   "download <service-id>",
	Short: "Download an Aideck service's container image",
	Long: `Pull the service's Docker image and create its container without
starting it. An optional --image flag overrides the image the daemon
reports for the service.`,
	Args: cobra.ExactArgs(1),
	Run:  runServicesDownload,
}

// servicesRemoveCmd removes a service's container
var servicesRemoveCmd = &cobra.Command{
	Use:   "remove <service-id>",
	Short: "Remove an Aideck service's container",
	Args:  cobra.ExactArgs(1),
	Run:   runServicesRemove,
}

// servicesRefreshCmd force-refreshes the daemon's service data
var servicesRefreshCmd = &cobra.Command{
	Use:   "refresh <service-id>",
	Short: "Refresh cached data for a service",
	Long: `Force a refetch of the services collection and invalidate the cached
entry for the given service. Safe to run repeatedly.`,
	Args: cobra.ExactArgs(1),
	Run:  runServicesRefresh,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
	servicesCmd.AddCommand(servicesStatusCmd)
	servicesCmd.AddCommand(servicesStartCmd)
	servicesCmd.AddCommand(servicesStopCmd)
	servicesCmd.AddCommand(servicesDownloadCmd)
	servicesCmd.AddCommand(servicesRemoveCmd)
	servicesCmd.AddCommand(servicesRefreshCmd)

	// Machine-readable output
	servicesStatusCmd.Flags().Bool("json", false, "Output status in JSON format")
	servicesDownloadCmd.Flags().String("image", "", "Override the image to pull")
}

// runServicesStatus is the main entry point for the services status command
func runServicesStatus(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	client := newDaemonClient()
	store := NewStore(client)
	manager := NewDockerServiceManager(effectiveDaemonURL())

	dockerRunning := isDockerRunning(ctx)
	serverRunning := client.Healthy(ctx)

	var statuses []ServiceInfo
	if serverRunning {
		services, err := store.Services(ctx)
		if err != nil {
			OutputError("Failed to fetch services: %v\n", err)
			os.Exit(1)
		}
		for _, svc := range services {
			statuses = append(statuses, manager.CheckStatus(svc))
		}
	}

	output := ServicesStatusOutput{
		Services:      statuses,
		DockerRunning: dockerRunning,
		ServerRunning: serverRunning,
		Timestamp:     time.Now().Unix(),
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			OutputError("Failed to encode JSON output: %v\n", err)
			os.Exit(1)
		}
	} else {
		formatServicesStatus(&output)
	}
}

// runServicesStart is the main entry point for the services start command
func runServicesStart(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	svc := mustGetService(ctx, args[0])

	status := GetStatus(svc)
	if !IsAccessible(status) {
		OutputError("Service %s is not available yet (%s)\n", svc.ID, status)
		os.Exit(1)
	}

	manager := NewDockerServiceManager(effectiveDaemonURL())
	if err := manager.IsAvailable(); err != nil {
		OutputError("%v\n", err)
		os.Exit(1)
	}

	if err := manager.StartService(svc); err != nil {
		OutputError("Failed to start %s: %v\n", svc.ID, err)
		os.Exit(1)
	}

	OutputSuccess("Service %s started\n", svc.ID)
}

// runServicesStop is the main entry point for the services stop command
func runServicesStop(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	svc := mustGetService(ctx, args[0])

	manager := NewDockerServiceManager(effectiveDaemonURL())
	if err := manager.StopService(svc); err != nil {
		OutputError("Failed to stop %s: %v\n", svc.ID, err)
		os.Exit(1)
	}

	OutputSuccess("Service %s stopped\n", svc.ID)
}

// runServicesDownload pulls the image and creates the container for a service
func runServicesDownload(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
	defer cancel()

	svc := mustGetService(ctx, args[0])

	status := GetStatus(svc)
	if status == StatusComingSoon {
		OutputError("Service %s is not available yet (%s)\n", svc.ID, status)
		os.Exit(1)
	}

	manager := NewDockerServiceManager(effectiveDaemonURL())
	if err := manager.IsAvailable(); err != nil {
		OutputError("%v\n", err)
		os.Exit(1)
	}

	imageOverride, _ := cmd.Flags().GetString("image")
	if err := manager.DownloadService(svc, imageOverride); err != nil {
		OutputError("Failed to download %s: %v\n", svc.ID, err)
		os.Exit(1)
	}

	OutputSuccess("Service %s downloaded\n", svc.ID)
}

// runServicesRemove removes the container backing a service
func runServicesRemove(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	svc := mustGetService(ctx, args[0])

	manager := NewDockerServiceManager(effectiveDaemonURL())
	if err := manager.RemoveService(svc); err != nil {
		OutputError("Failed to remove %s: %v\n", svc.ID, err)
		os.Exit(1)
	}

	OutputSuccess("Service %s removed\n", svc.ID)
}

// runServicesRefresh force-refetches the services collection and invalidates
// the single-service cache entry, mirroring the dashboard's refresh action.
func runServicesRefresh(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store := NewStore(newDaemonClient())
	svc, err := store.Service(ctx, args[0])
	if err != nil {
		OutputError("%v\n", err)
		os.Exit(1)
	}

	card := NewCardController(svc, store)
	if err := card.Refresh(ctx); err != nil {
		OutputError("Refresh failed: %v\n", err)
		os.Exit(1)
	}

	OutputSuccess("Refreshed service data for %s\n", svc.ID)
}

// mustGetService fetches a service from the daemon or exits with a hint.
func mustGetService(ctx context.Context, id string) Service {
	store := NewStore(newDaemonClient())
	svc, err := store.Service(ctx, id)
	if err != nil {
		OutputError("Unknown service: %s (%v)\n", id, err)
		fmt.Fprintf(os.Stderr, "\nRun 'aideck services status' to list known services.\n")
		os.Exit(1)
	}
	return svc
}
