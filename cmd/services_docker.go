package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
)

// containerNameFor returns the managed container name for a service id.
func containerNameFor(serviceID string) string {
	return fmt.Sprintf("aideck-%s", serviceID)
}

// DockerServiceManager handles Docker-specific service operations
type DockerServiceManager struct {
	daemonURL string
}

// NewDockerServiceManager creates a new Docker service manager
func NewDockerServiceManager(daemonURL string) *DockerServiceManager {
	return &DockerServiceManager{daemonURL: daemonURL}
}

// IsAvailable checks if Docker is available
func (d *DockerServiceManager) IsAvailable() error {
	return ensureDockerAvailable()
}

// CheckStatus builds the runtime status row for a single service, combining
// the daemon's record with the container's actual state.
func (d *DockerServiceManager) CheckStatus(svc Service) ServiceInfo {
	status := GetStatus(svc)
	info := ServiceInfo{
		ID:            svc.ID,
		Name:          svc.Name,
		ContainerName: containerNameFor(svc.ID),
		Status:        string(status),
		Accessible:    IsAccessible(status),
		Ports:         make(map[string]string),
	}

	if status == StatusComingSoon || status == StatusNotDownloaded {
		return info
	}

	containerName := info.ContainerName
	if !containerExists(containerName) {
		return info
	}

	if containerID, imageName, uptime, err := getContainerDetails(containerName); err == nil {
		info.ContainerID = containerID
		info.Image = imageName
		info.Uptime = uptime
	} else {
		logDebug(fmt.Sprintf("Failed to get container details for %s: %v", containerName, err))
	}

	if isContainerRunning(containerName) {
		if ports, err := GetPublishedPorts(containerName); err == nil {
			info.Ports = ports
		}
	}

	return info
}

// StartService starts the Docker container backing a service and waits for
// it to answer its health URL.
func (d *DockerServiceManager) StartService(svc Service) error {
	containerName := containerNameFor(svc.ID)

	if containerExists(containerName) && isContainerRunning(containerName) {
		return nil // Already running
	}

	if !containerExists(containerName) {
		return fmt.Errorf("container %s does not exist; download the service first", containerName)
	}

	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	if err := cli.ContainerStart(ctx, containerName, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	if svc.BaseURL != "" {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := WaitForReadiness(waitCtx, HTTPGetReady(svc.BaseURL), time.Second); err != nil {
			OutputWarning("Service %s started but is not answering yet: %v\n", svc.ID, err)
		}
	}

	return nil
}

// StopService stops the Docker container backing a service.
func (d *DockerServiceManager) StopService(svc Service) error {
	containerName := containerNameFor(svc.ID)

	if !containerExists(containerName) {
		return fmt.Errorf("container %s does not exist", containerName)
	}
	if !isContainerRunning(containerName) {
		return nil // Already stopped
	}

	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	timeout := 10 // seconds
	if err := cli.ContainerStop(ctx, containerName, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// DownloadService pulls the service's image and creates its container.
func (d *DockerServiceManager) DownloadService(svc Service, imageName string) error {
	if imageName == "" {
		imageName = svc.Image
	}
	if imageName == "" {
		return fmt.Errorf("service %s has no image to download", svc.ID)
	}

	if err := pullImage(imageName); err != nil {
		return err
	}

	containerName := containerNameFor(svc.ID)
	if containerExists(containerName) {
		return nil
	}

	ctx := context.Background()
	cli, err := createDockerClient()
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	cfg := &container.Config{
		Image: imageName,
		Labels: map[string]string{
			"aideck.managed": "true",
			"aideck.service": svc.ID,
		},
	}
	if len(svc.Ports) > 0 {
		exposed, err := exposedPortSet(svc.Ports)
		if err != nil {
			return err
		}
		cfg.ExposedPorts = exposed
	}
	hostCfg := &container.HostConfig{
		PublishAllPorts: true,
	}

	if _, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, containerName); err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	return nil
}

// RemoveService removes the service's container.
func (d *DockerServiceManager) RemoveService(svc Service) error {
	return removeContainer(containerNameFor(svc.ID))
}
