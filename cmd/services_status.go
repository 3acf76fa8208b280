package cmd

import (
	"fmt"
	"strings"
)

// ServiceStatus classifies a service's operational readiness. The set is
// closed: every value the daemon can produce is listed here, and every
// consumer must handle each value explicitly.
type ServiceStatus string

const (
	StatusComingSoon    ServiceStatus = "coming_soon"
	StatusError         ServiceStatus = "error"
	StatusRunning       ServiceStatus = "running"
	StatusDownloading   ServiceStatus = "downloading"
	StatusStopped       ServiceStatus = "stopped"
	StatusNotDownloaded ServiceStatus = "not_downloaded"
)

// AllStatuses lists every ServiceStatus value. Tests iterate this to keep
// the accessibility mapping exhaustive.
var AllStatuses = []ServiceStatus{
	StatusComingSoon,
	StatusError,
	StatusRunning,
	StatusDownloading,
	StatusStopped,
	StatusNotDownloaded,
}

// GetStatus maps a service record to exactly one status. Pure and total:
// it inspects only the record's own fields, and every reachable shape
// resolves to a defined status. Precedence runs coming-soon, error,
// running, downloading, stopped; anything else is not yet downloaded.
func GetStatus(s Service) ServiceStatus {
	switch {
	case s.ComingSoon:
		return StatusComingSoon
	case s.Error:
		return StatusError
	case s.Running:
		return StatusRunning
	case s.Downloading:
		return StatusDownloading
	case s.Downloaded:
		return StatusStopped
	default:
		return StatusNotDownloaded
	}
}

// IsAccessible reports whether a user may navigate into a service's detail
// view right now. Every status value is enumerated; a status missing here
// would deny access rather than silently grant it.
func IsAccessible(status ServiceStatus) bool {
	switch status {
	case StatusComingSoon:
		return false
	case StatusError:
		return true
	case StatusRunning:
		return true
	case StatusDownloading:
		return true
	case StatusStopped:
		return true
	case StatusNotDownloaded:
		return true
	}
	// Unreachable while the enum stays closed; deny rather than grant.
	return false
}

// statusIcon returns a terminal icon for a service status.
func statusIcon(status ServiceStatus) string {
	switch status {
	case StatusRunning:
		return "✓"
	case StatusStopped:
		return "✗"
	case StatusError:
		return "!"
	case StatusDownloading:
		return "↓"
	case StatusComingSoon:
		return "…"
	case StatusNotDownloaded:
		return "○"
	}
	return "?"
}

// formatServicesStatus prints the status output in a human-readable format.
func formatServicesStatus(output *ServicesStatusOutput) {
	fmt.Println()
	fmt.Println("Aideck Services Status")
	fmt.Println("======================")
	fmt.Println()

	anyRunning := false
	allRunning := true

	for _, svc := range output.Services {
		fmt.Printf("Service: %s\n", svc.Name)
		fmt.Printf("  Status: %s %s\n", statusIcon(ServiceStatus(svc.Status)), svc.Status)

		if svc.Status == string(StatusRunning) {
			anyRunning = true
			if svc.ContainerID != "" {
				fmt.Printf("  Container: %s\n", svc.ContainerID)
			}
			if svc.Uptime != "" {
				fmt.Printf("  Uptime: %s\n", svc.Uptime)
			}
			if len(svc.Ports) > 0 {
				fmt.Printf("  Ports:\n")
				for containerPort, hostPort := range svc.Ports {
					fmt.Printf("    %s -> %s\n", containerPort, hostPort)
				}
			}
		} else {
			allRunning = false
			if svc.Image != "" {
				fmt.Printf("  Image: %s\n", svc.Image)
			}
		}

		if !svc.Accessible {
			fmt.Printf("  Accessible: no\n")
		}

		fmt.Println()
	}

	if !output.DockerRunning || !output.ServerRunning {
		missing := []string{}
		if !output.DockerRunning {
			missing = append(missing, "docker")
		}
		if !output.ServerRunning {
			missing = append(missing, "daemon")
		}
		fmt.Printf("⚠️  Prerequisites not ready: %s\n", strings.Join(missing, ", "))
		fmt.Println()
		fmt.Println("Run 'aideck doctor' for details.")
		fmt.Println()
	} else if !anyRunning {
		fmt.Println("⚠️  No services are currently running")
		fmt.Println()
		fmt.Println("To start a service:")
		fmt.Println("  aideck services start <service-id>")
		fmt.Println()
	} else if !allRunning {
		fmt.Println("⚠️  Some services are not running")
		fmt.Println()
	} else {
		fmt.Println("✅ All services are running")
		fmt.Println()
	}
}
