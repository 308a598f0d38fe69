package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/P1n3appl3/rssfetch/config"
)

// ClientConfig represents HTTP client configuration
type ClientConfig struct {
	Timeout            time.Duration
	InsecureSkipVerify bool
	UserAgent          string
}

// DefaultClientConfig returns the client configuration used without a config file
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:            config.DefaultTimeout,
		InsecureSkipVerify: true,
	}
}

// ClientConfigFrom derives the client configuration from a run configuration
func ClientConfigFrom(conf config.Config) (ClientConfig, error) {
	timeout, err := conf.RequestTimeout()
	if err != nil {
		return ClientConfig{}, err
	}
	return ClientConfig{
		Timeout:            timeout,
		InsecureSkipVerify: conf.SkipVerify(),
		UserAgent:          conf.UserAgent,
	}, nil
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %d %s", e.Code, http.StatusText(e.Code))
}

// Client is the HTTP client shared by every fetch. It never retries.
type Client struct {
	client *http.Client
	config ClientConfig
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(cfg ClientConfig) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		// Several feeds sit behind self-signed or expired certificates
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	return &Client{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
	}
}

// Get performs a GET request and returns the full response body
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
