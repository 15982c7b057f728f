// Package socialfeed delivers to the page-feed platform. Media-heavy, so
// calls run under the longer timeout budget.
package socialfeed

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

const defaultAPIBase = "https://graph.socialfeed.example/v18.0"

type Adapter struct {
	logger  *zap.Logger
	client  *platform.Client
	apiBase string
	pageID  string
	config  map[string]string
}

func New(logger *zap.Logger, config map[string]string) platform.Adapter {
	apiBase := config["api_base"]
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Adapter{
		logger:  logger,
		apiBase: apiBase,
		pageID:  config["page_id"],
		config:  config,
		client: platform.NewClient(formatter.PlatformSocialFeed, platform.MediaTimeout, map[string]string{
			"Authorization": "Bearer " + config["access_token"],
		}),
	}
}

func (a *Adapter) Name() string { return formatter.PlatformSocialFeed }

func (a *Adapter) IsConfigured() bool {
	return platform.Complete(formatter.PlatformSocialFeed, a.config)
}

type feedPost struct {
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

type feedResponse struct {
	ID string `json:"id"`
}

func (a *Adapter) Publish(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	req := feedPost{Message: payload.PlatformContent, Link: payload.URL}

	var resp feedResponse
	raw, err := a.client.DoJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s/feed", a.apiBase, a.pageID), req, &resp)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Feed post published",
		zap.String("platform", a.Name()),
		zap.String("external_id", resp.ID))

	return &platform.DeliveryResult{
		ExternalID:  resp.ID,
		ExternalURL: fmt.Sprintf("https://socialfeed.example/%s", resp.ID),
		RawResponse: raw,
	}, nil
}

func (a *Adapter) Update(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}
	if payload.ExternalID == "" {
		return nil, fmt.Errorf("post id is required for update")
	}

	req := feedPost{Message: payload.PlatformContent}
	raw, err := a.client.DoJSON(ctx, http.MethodPost, fmt.Sprintf("%s/%s", a.apiBase, payload.ExternalID), req, nil)
	if err != nil {
		return nil, err
	}

	return &platform.DeliveryResult{ExternalID: payload.ExternalID, RawResponse: raw}, nil
}

func (a *Adapter) Delete(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}
	if payload.ExternalID == "" {
		return nil, fmt.Errorf("post id is required for deletion")
	}

	raw, err := a.client.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", a.apiBase, payload.ExternalID), nil, nil)
	if err != nil {
		return nil, err
	}

	return &platform.DeliveryResult{ExternalID: payload.ExternalID, RawResponse: raw}, nil
}

func (a *Adapter) TestConnection(ctx context.Context) error {
	if !a.IsConfigured() {
		return platform.ErrNotConfigured
	}
	_, err := a.client.DoJSON(ctx, http.MethodGet, fmt.Sprintf("%s/%s?fields=id,name", a.apiBase, a.pageID), nil, nil)
	return err
}

// Analytics implements platform.AnalyticsProvider using the post insights
// endpoint.
func (a *Adapter) Analytics(ctx context.Context, externalID string) (map[string]int64, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	var resp struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if _, err := a.client.DoJSON(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s/insights?metric=post_impressions,post_engaged_users", a.apiBase, externalID), nil, &resp); err != nil {
		return nil, err
	}

	metrics := make(map[string]int64, len(resp.Data))
	for _, m := range resp.Data {
		if len(m.Values) > 0 {
			metrics[m.Name] = m.Values[0].Value
		}
	}
	return metrics, nil
}
