package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Source supplies content snapshots by id. The content store itself lives
// outside this service; the dispatcher only ever reads through this
// interface at enqueue time.
type Source interface {
	Get(ctx context.Context, id string) (*Content, error)
}

// HTTPSource fetches content snapshots from the content store's JSON API.
type HTTPSource struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPSource(baseURL, token string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPSource) Get(ctx context.Context, id string) (*Content, error) {
	endpoint := fmt.Sprintf("%s/content/%s", s.baseURL, url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("content %s not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content store returned status %d: %s", resp.StatusCode, string(body))
	}

	var c Content
	if err := json.Unmarshal(body, &c); err != nil {
		return nil, fmt.Errorf("failed to parse content %s: %w", id, err)
	}
	if c.ID == "" {
		c.ID = id
	}

	return &c, nil
}
