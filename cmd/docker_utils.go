package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/aideck/cli/cmd/utils"
)

// createDockerClient creates a new Docker client with API version negotiation
func createDockerClient() (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %v", err)
	}
	return cli, nil
}

// isDockerRunning reports whether the Docker daemon answers a ping. Any
// failure counts as "not running".
func isDockerRunning(ctx context.Context) bool {
	cli, err := createDockerClient()
	if err != nil {
		logDebug(fmt.Sprintf("docker client unavailable: %v", err))
		return false
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = cli.Ping(ctx)
	if err != nil {
		logDebug(fmt.Sprintf("docker ping failed: %v", err))
	}
	return err == nil
}

// ensureDockerAvailable checks whether docker is available by creating a
// client and pinging the daemon.
func ensureDockerAvailable() error {
	cli, err := createDockerClient()
	if err != nil {
		return fmt.Errorf("Docker is not available. Please install Docker and try again: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon is not running: %v", err)
	}
	return nil
}

// engineMemoryGiB asks the Docker engine how much memory it can use,
// in GiB. Returns nil when the engine is unreachable.
func engineMemoryGiB(ctx context.Context) (*float64, error) {
	cli, err := createDockerClient()
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	info, err := cli.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query docker info: %w", err)
	}
	if info.MemTotal <= 0 {
		return nil, nil
	}
	gib := float64(info.MemTotal) / (1024 * 1024 * 1024)
	// Round to the nearest whole GiB; the engine reports slightly under
	// the configured VM size on macOS/Windows.
	rounded := float64(int64(gib + 0.5))
	return &rounded, nil
}

// findContainerID resolves a container name to its ID. Empty when not found.
func findContainerID(ctx context.Context, cli *client.Client, name string, all bool) (string, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %v", err)
	}
	for _, c := range containers {
		for _, containerName := range c.Names {
			// Container names from the API include leading slash
			if strings.TrimPrefix(containerName, "/") == name {
				return c.ID, nil
			}
		}
	}
	return "", nil
}

func containerExists(name string) bool {
	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		logDebug(fmt.Sprintf("Failed to create Docker client: %v", err))
		return false
	}
	defer cli.Close()

	id, err := findContainerID(ctx, cli, name, true)
	if err != nil {
		logDebug(err.Error())
		return false
	}
	return id != ""
}

func isContainerRunning(name string) bool {
	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		logDebug(fmt.Sprintf("Failed to create Docker client: %v", err))
		return false
	}
	defer cli.Close()

	id, err := findContainerID(ctx, cli, name, false)
	if err != nil {
		logDebug(err.Error())
		return false
	}
	return id != ""
}

// getContainerDetails returns the ID, image and uptime for a named container.
func getContainerDetails(name string) (containerID, imageName, uptime string, err error) {
	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		return "", "", "", err
	}
	defer cli.Close()

	id, err := findContainerID(ctx, cli, name, true)
	if err != nil {
		return "", "", "", err
	}
	if id == "" {
		return "", "", "", fmt.Errorf("container %s not found", name)
	}

	inspected, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to inspect container %s: %v", name, err)
	}

	shortID := id
	if len(shortID) > 12 {
		shortID = shortID[:12]
	}

	if inspected.State != nil && inspected.State.Running {
		if started, perr := time.Parse(time.RFC3339Nano, inspected.State.StartedAt); perr == nil {
			uptime = time.Since(started).Round(time.Second).String()
		}
	}
	return shortID, inspected.Config.Image, uptime, nil
}

// GetPublishedPorts returns a map like "80/tcp" -> "49154"
func GetPublishedPorts(name string) (map[string]string, error) {
	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %v", err)
	}
	defer cli.Close()

	id, err := findContainerID(ctx, cli, name, false)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("container %s not found", name)
	}

	inspected, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %s: %v", name, err)
	}

	res := make(map[string]string)
	for port, bindings := range inspected.NetworkSettings.Ports {
		if len(bindings) > 0 {
			// Take the first binding if multiple exist
			res[string(port)] = bindings[0].HostPort
		}
	}
	logDebug(fmt.Sprintf("Published ports for %s: %v", name, res))
	return res, nil
}

// exposedPortSet builds the exposed-port set for a service's declared ports.
func exposedPortSet(ports []int) (nat.PortSet, error) {
	set := make(nat.PortSet, len(ports))
	for _, p := range ports {
		port, err := nat.NewPort("tcp", fmt.Sprintf("%d", p))
		if err != nil {
			return nil, fmt.Errorf("invalid port specification: %v", err)
		}
		set[port] = struct{}{}
	}
	return set, nil
}

// DockerPullProgress represents the progress of a Docker pull operation
type DockerPullProgress struct {
	ID      string
	Status  string
	Current int64
	Total   int64
}

// DockerSDKProgress represents the JSON progress structure from Docker SDK
type DockerSDKProgress struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	Progress       string `json:"progress,omitempty"`
	ProgressDetail struct {
		Current int64 `json:"current"`
		Total   int64 `json:"total"`
	} `json:"progressDetail,omitempty"`
}

// ProgressTracker tracks overall pull progress across all layers
type ProgressTracker struct {
	layers     map[string]*DockerPullProgress
	totalBytes int64
	doneBytes  int64
	startTime  time.Time
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		layers:    make(map[string]*DockerPullProgress),
		startTime: time.Now(),
	}
}

// Update updates the progress tracker with new layer information
func (pt *ProgressTracker) Update(progress *DockerPullProgress) {
	if progress.ID == "" {
		return
	}
	pt.layers[progress.ID] = progress
	pt.recalculate()
}

func (pt *ProgressTracker) recalculate() {
	pt.totalBytes = 0
	pt.doneBytes = 0

	for _, layer := range pt.layers {
		if layer.Total > 0 {
			pt.totalBytes += layer.Total

			switch layer.Status {
			case "Download complete", "Verifying Checksum", "Extracting", "Pull complete":
				pt.doneBytes += layer.Total
			case "Downloading":
				pt.doneBytes += layer.Current
			default:
				if layer.Current > 0 {
					pt.doneBytes += layer.Current
				}
			}
		}
	}
}

// GetProgress returns the overall progress percentage (0-100) based on layer completion
func (pt *ProgressTracker) GetProgress() float64 {
	if len(pt.layers) == 0 {
		return 0.0
	}

	completed := 0
	for _, layer := range pt.layers {
		switch layer.Status {
		case "Download complete", "Verifying Checksum", "Extracting", "Pull complete":
			completed++
		}
	}

	progress := float64(completed) / float64(len(pt.layers)) * 100
	if progress > 100.0 {
		progress = 100.0
	} else if progress < 0.0 {
		progress = 0.0
	}
	return progress
}

// GetTransferRate returns the transfer rate in bytes per second
func (pt *ProgressTracker) GetTransferRate() float64 {
	elapsed := time.Since(pt.startTime).Seconds()
	if elapsed < 1.0 {
		return 0
	}
	return float64(pt.doneBytes) / elapsed
}

// DisplayProgress displays a single-line progress update
func (pt *ProgressTracker) DisplayProgress(imageName string) {
	OutputProgress("\rPulling %s: %.1f%% (%s/s)    ",
		imageName, pt.GetProgress(), utils.FormatBytes(int64(pt.GetTransferRate())))
}

// imageExists checks if a Docker image exists locally
func imageExists(imageName string) bool {
	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		logDebug(fmt.Sprintf("Failed to create Docker client for image check: %v", err))
		return false
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		logDebug(fmt.Sprintf("Failed to list images: %v", err))
		return false
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true
			}
		}
	}
	return false
}

// pullImage pulls a docker image using the Docker SDK with progress tracking.
// Only pulls if the image doesn't exist locally.
func pullImage(imageName string) error {
	if imageExists(imageName) {
		logDebug(fmt.Sprintf("Image %s already exists locally, skipping pull", imageName))
		return nil
	}

	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	// Short display name: drop registry and tag
	imageParts := strings.Split(imageName, "/")
	displayName := imageParts[len(imageParts)-1]
	if tagIdx := strings.Index(displayName, ":"); tagIdx > 0 {
		displayName = displayName[:tagIdx]
	}

	OutputProgress("Pulling image: %s\n", imageName)

	out, err := cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %v", err)
	}
	defer out.Close()

	tracker := NewProgressTracker()
	lastProgressTime := time.Now()

	decoder := json.NewDecoder(out)
	for {
		var progress DockerSDKProgress
		if err := decoder.Decode(&progress); err != nil {
			if err == io.EOF {
				break
			}
			logDebug(fmt.Sprintf("Error decoding progress: %v", err))
			continue
		}

		if progress.Error != "" {
			return fmt.Errorf("docker pull failed: %s", progress.Error)
		}

		if progress.ID != "" {
			dockerProgress := &DockerPullProgress{
				ID:      progress.ID,
				Status:  progress.Status,
				Current: progress.ProgressDetail.Current,
				Total:   progress.ProgressDetail.Total,
			}

			// Status-only updates carry no totals; keep the previous one
			if dockerProgress.Total == 0 {
				if existing, ok := tracker.layers[progress.ID]; ok && existing.Total > 0 {
					dockerProgress.Total = existing.Total
				}
			}

			tracker.Update(dockerProgress)

			// Throttle display updates
			if time.Since(lastProgressTime) > 500*time.Millisecond {
				tracker.DisplayProgress(displayName)
				lastProgressTime = time.Now()
			}
		}
	}

	OutputProgress("\r%s\r", strings.Repeat(" ", 80))
	OutputSuccess("✓ Pulled %s successfully\n", displayName)
	return nil
}

func removeContainer(name string) error {
	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %v", err)
	}
	defer cli.Close()

	id, err := findContainerID(ctx, cli, name, true)
	if err != nil {
		return err
	}
	if id == "" {
		return nil // Container not found, nothing to remove
	}

	if err := cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container %s: %v", name, err)
	}
	logDebug(fmt.Sprintf("Removed container: %s (ID: %s)", name, id))
	return nil
}

// WaitForReadiness polls check until it succeeds or ctx expires.
func WaitForReadiness(ctx context.Context, check func() error, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := check(); err == nil {
				return nil
			}
		}
	}
}

// HTTPGetReady returns a readiness check that GETs url and expects a 2xx.
func HTTPGetReady(url string) func() error {
	return func() error { return utils.PingURL(url) }
}
