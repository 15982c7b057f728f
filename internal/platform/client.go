package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default request timeouts. Media-heavy platforms get a longer budget.
const (
	DefaultTimeout = 30 * time.Second
	MediaTimeout   = 60 * time.Second
)

// Client wraps an http.Client with the JSON request/response handling every
// adapter shares: marshal body, attach headers, bound by timeout, map
// non-2xx responses to *APIError with the platform's structured error
// message when parseable.
type Client struct {
	platform string
	http     *http.Client
	headers  map[string]string
}

func NewClient(platform string, timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		platform: platform,
		http:     &http.Client{Timeout: timeout},
		headers:  headers,
	}
}

// apiErrorBody matches the common error envelopes platforms respond with.
type apiErrorBody struct {
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// DoJSON performs a JSON API call. A nil body sends no payload; a nil out
// skips decoding. The raw response body is returned for audit snapshots.
func (c *Client) DoJSON(ctx context.Context, method, url string, body, out any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Platform:   c.platform,
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(respBody),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return respBody, nil
}

func extractErrorMessage(body []byte) string {
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return string(body)
}
