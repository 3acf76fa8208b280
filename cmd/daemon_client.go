package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DaemonClient talks to the local Aideck daemon's HTTP API. The daemon owns
// the service and interface collections; this client only reads them.
type DaemonClient struct {
	baseURL string
	client  HTTPClient
}

// NewDaemonClient creates a client for the daemon at baseURL.
func NewDaemonClient(baseURL string, client HTTPClient) *DaemonClient {
	if client == nil {
		client = getHTTPClient()
	}
	return &DaemonClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// newDaemonClient builds a client against the configured --daemon-url.
func newDaemonClient() *DaemonClient {
	return NewDaemonClient(effectiveDaemonURL(), nil)
}

func (d *DaemonClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, prettyServerError(resp, body))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// Services fetches the full services collection.
func (d *DaemonClient) Services(ctx context.Context) ([]Service, error) {
	var services []Service
	if err := d.get(ctx, "/v1/services", &services); err != nil {
		return nil, err
	}
	return services, nil
}

// Service fetches a single service by id.
func (d *DaemonClient) Service(ctx context.Context, id string) (Service, error) {
	var svc Service
	if err := d.get(ctx, "/v1/services/"+id, &svc); err != nil {
		return Service{}, err
	}
	return svc, nil
}

// Interfaces fetches the ordered interface collection.
func (d *DaemonClient) Interfaces(ctx context.Context) ([]Interface, error) {
	var ifaces []Interface
	if err := d.get(ctx, "/v1/interfaces", &ifaces); err != nil {
		return nil, err
	}
	return ifaces, nil
}

// Stats fetches the daemon's system stats probe.
func (d *DaemonClient) Stats(ctx context.Context) (SystemStats, error) {
	var stats SystemStats
	if err := d.get(ctx, "/v1/stats", &stats); err != nil {
		return SystemStats{}, err
	}
	return stats, nil
}

// Healthy reports whether the daemon answers its health endpoint. Any
// failure counts as "not running".
func (d *DaemonClient) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.get(ctx, "/v1/health", nil) == nil
}
