package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultFetchTimeout is the default timeout for registry fetches
	DefaultFetchTimeout = 15 * time.Second

	// MaxDocumentSize caps registry document bodies at 10MB
	MaxDocumentSize = 10 * 1024 * 1024

	userAgent = "openfable/1.0"
)

// Client fetches registry documents. Implementations must honor the context
// and return the raw body only for successful responses.
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// HTTPClient is the default Client implementation backed by net/http
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates an HTTP client with the given timeout.
// A zero timeout falls back to DefaultFetchTimeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Get performs an HTTP GET request for a registry document
func (c *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxDocumentSize {
		return nil, fmt.Errorf("registry document exceeds maximum size of %d bytes", MaxDocumentSize)
	}

	return body, nil
}
