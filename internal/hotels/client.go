package hotels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrNotConfigured = errors.New("hotel search provider not configured")

// StatusError is returned when the provider answers outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded with status %d", e.StatusCode)
}

type Client struct {
	cfg        Config
	HTTPClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Search forwards a raw JSON search request and returns the provider's body
// untouched.
func (c *Client) Search(ctx context.Context, body []byte) ([]byte, error) {
	if !c.cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}
