package utils

import (
	"net/http"
	"time"
)

// HTTPClient interface for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient is the default HTTP client
type DefaultHTTPClient struct{ Timeout time.Duration }

// Do implements the HTTPClient interface
func (c *DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	// Zero timeout means no timeout in Go's http.Client
	client := &http.Client{Timeout: c.Timeout}
	return client.Do(req)
}

// Default HTTP client with 60-second timeout for normal API calls
var httpClient HTTPClient = &DefaultHTTPClient{Timeout: 60 * time.Second}

func GetHTTPClient() HTTPClient {
	return httpClient
}

func SetHTTPClientForTest(client HTTPClient) {
	httpClient = client
}
