// Package profnet delivers to the professional-network platform.
package profnet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

const defaultAPIBase = "https://api.profnet.example/v2"

type Adapter struct {
	logger  *zap.Logger
	client  *platform.Client
	apiBase string
	orgID   string
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
		orgID:   config["organization_id"],
		config:  config,
		client: platform.NewClient(formatter.PlatformProfessionalNetwork, platform.DefaultTimeout, map[string]string{
			"Authorization":             "Bearer " + config["access_token"],
			"X-Restli-Protocol-Version": "2.0.0",
		}),
	}
}

func (a *Adapter) Name() string { return formatter.PlatformProfessionalNetwork }

func (a *Adapter) IsConfigured() bool {
	return platform.Complete(formatter.PlatformProfessionalNetwork, a.config)
}

type sharePost struct {
	Author         string `json:"author"`
	Commentary     string `json:"commentary"`
	Visibility     string `json:"visibility"`
	LifecycleState string `json:"lifecycleState"`
}

func (a *Adapter) Publish(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	req := sharePost{
		Author:         "urn:org:" + a.orgID,
		Commentary:     payload.PlatformContent,
		Visibility:     "PUBLIC",
		LifecycleState: "PUBLISHED",
	}

	var resp struct {
		ID string `json:"id"`
	}
	raw, err := a.client.DoJSON(ctx, http.MethodPost, a.apiBase+"/posts", req, &resp)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Share published",
		zap.String("platform", a.Name()),
		zap.String("external_id", resp.ID))

	return &platform.DeliveryResult{
		ExternalID:  resp.ID,
		ExternalURL: fmt.Sprintf("https://profnet.example/feed/update/%s", url.PathEscape(resp.ID)),
		RawResponse: raw,
	}, nil
}

func (a *Adapter) Update(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}
	if payload.ExternalID == "" {
		return nil, fmt.Errorf("share id is required for update")
	}

	req := map[string]any{
		"patch": map[string]any{
			"$set": map[string]string{"commentary": payload.PlatformContent},
		},
	}
	raw, err := a.client.DoJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/posts/%s", a.apiBase, url.PathEscape(payload.ExternalID)), req, nil)
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
		return nil, fmt.Errorf("share id is required for deletion")
	}

	raw, err := a.client.DoJSON(ctx, http.MethodDelete,
		fmt.Sprintf("%s/posts/%s", a.apiBase, url.PathEscape(payload.ExternalID)), nil, nil)
	if err != nil {
		return nil, err
	}

	return &platform.DeliveryResult{ExternalID: payload.ExternalID, RawResponse: raw}, nil
}

func (a *Adapter) TestConnection(ctx context.Context) error {
	if !a.IsConfigured() {
		return platform.ErrNotConfigured
	}
	_, err := a.client.DoJSON(ctx, http.MethodGet, a.apiBase+"/me", nil, nil)
	return err
}
