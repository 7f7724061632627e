package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the marketplace REST API. The API is an external
// collaborator: this client maps its envelope responses into domain values
// and typed errors, nothing more.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the given base URL. An empty base URL is
// allowed here; every call checks it and fails with ErrNotConfigured before
// touching the network.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON posts a JSON body and decodes the envelope's data field into out
// (out may be nil for ack-only endpoints). A bearer token is attached when
// non-empty. Non-2xx responses become *APIError carrying the upstream
// message.
func (c *Client) doJSON(ctx context.Context, method, path string, bearer string, body, out any) error {
	if c.BaseURL == "" {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("upstream: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("upstream: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("upstream: read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		// Tolerate non-JSON bodies on errors; the envelope stays zero.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("upstream: response missing data payload")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("upstream: decode response: %w", err)
	}
	return nil
}
