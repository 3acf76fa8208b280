package cmd

// ModelInfo carries model-level metadata for a service, as reported by the daemon.
type ModelInfo struct {
	Name               string  `json:"name,omitempty"`
	MemoryRequirements float64 `json:"memory_requirements,omitempty"` // GiB
	WeightsURL         string  `json:"weights_url,omitempty"`
	WeightsChecksum    string  `json:"weights_checksum,omitempty"`
}

// ServiceTypeDocker is the default service type for container-backed services.
const ServiceTypeDocker = "docker"

// Service represents a deployable application entry managed by the dashboard.
// The daemon owns this record; the CLI only reads it.
type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Icon            string    `json:"icon,omitempty"`
	Beta            bool      `json:"beta,omitempty"`
	Petals          bool      `json:"petals,omitempty"`
	ServiceType     string    `json:"serviceType,omitempty"` // empty means "docker"
	ModelInfo       ModelInfo `json:"modelInfo,omitempty"`
	UpdateAvailable bool      `json:"updateAvailable,omitempty"`
	Version         string    `json:"version,omitempty"`
	Image           string    `json:"image,omitempty"`      // docker image backing the service
	Ports           []int     `json:"ports,omitempty"`      // container ports the service exposes
	Interfaces      []string  `json:"interfaces,omitempty"` // interface ids applying to this service

	// Raw state fields the status classifier inspects.
	ComingSoon  bool `json:"comingSoon,omitempty"`
	Error       bool `json:"error,omitempty"`
	Running     bool `json:"running,omitempty"`
	Downloading bool `json:"downloading,omitempty"`
	Downloaded  bool `json:"downloaded,omitempty"`

	BaseURL string `json:"baseUrl,omitempty"`
}

// Type returns the service's type tag, defaulting to "docker" when the
// daemon record declares none.
func (s Service) Type() string {
	if s.ServiceType == "" {
		return ServiceTypeDocker
	}
	return s.ServiceType
}

// Interface is an external capability/app entity associable with a service by id.
type Interface struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	PlaygroundURL string `json:"playground,omitempty"`
}

// SystemStats is the daemon's system probe payload. MemoryLimit is the
// memory available to the container runtime in GiB; nil while unresolved.
type SystemStats struct {
	MemoryLimit *float64 `json:"memory_limit,omitempty"`
	CPUPercent  float64  `json:"cpu_percent,omitempty"`
}

// ServiceInfo is the runtime status row printed by `aideck services status`.
type ServiceInfo struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ContainerName string            `json:"container_name,omitempty"`
	Status        string            `json:"status"`
	Accessible    bool              `json:"accessible"`
	ContainerID   string            `json:"container_id,omitempty"`
	Image         string            `json:"image,omitempty"`
	Ports         map[string]string `json:"ports,omitempty"`
	Uptime        string            `json:"uptime,omitempty"`
}

// ServicesStatusOutput is the complete `aideck services status` payload.
type ServicesStatusOutput struct {
	Services      []ServiceInfo `json:"services"`
	DockerRunning bool          `json:"docker_running"`
	ServerRunning bool          `json:"server_running"`
	Timestamp     int64         `json:"timestamp"`
}
