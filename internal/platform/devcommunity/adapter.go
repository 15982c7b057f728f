// Package devcommunity delivers markdown articles to the developer
// community platform.
package devcommunity

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

const defaultAPIBase = "https://devcommunity.example/api"

type Adapter struct {
	logger  *zap.Logger
	client  *platform.Client
	apiBase string
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
		config:  config,
		client: platform.NewClient(formatter.PlatformDevCommunity, platform.DefaultTimeout, map[string]string{
			"api-key": config["api_key"],
		}),
	}
}

func (a *Adapter) Name() string { return formatter.PlatformDevCommunity }

func (a *Adapter) IsConfigured() bool {
	return platform.Complete(formatter.PlatformDevCommunity, a.config)
}

type articleEnvelope struct {
	Article article `json:"article"`
}

type article struct {
	Title        string   `json:"title"`
	BodyMarkdown string   `json:"body_markdown"`
	Published    bool     `json:"published"`
	MainImage    string   `json:"main_image,omitempty"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type articleResponse struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

func (a *Adapter) buildArticle(payload *formatter.FormattedContent) articleEnvelope {
	return articleEnvelope{Article: article{
		Title:        payload.Title,
		BodyMarkdown: payload.PlatformContent,
		Published:    payload.PublishStatus == "published",
		MainImage:    payload.MainImage,
		CanonicalURL: payload.CanonicalURL,
		Description:  payload.Description,
		Tags:         payload.Tags,
	}}
}

func (a *Adapter) Publish(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	var resp articleResponse
	raw, err := a.client.DoJSON(ctx, http.MethodPost, a.apiBase+"/articles", a.buildArticle(payload), &resp)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Article published",
		zap.String("platform", a.Name()),
		zap.Int64("external_id", resp.ID))

	return &platform.DeliveryResult{
		ExternalID:  fmt.Sprintf("%d", resp.ID),
		ExternalURL: resp.URL,
		RawResponse: raw,
	}, nil
}

func (a *Adapter) Update(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}
	if payload.ExternalID == "" {
		return nil, fmt.Errorf("article id is required for update")
	}

	var resp articleResponse
	raw, err := a.client.DoJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/articles/%s", a.apiBase, payload.ExternalID), a.buildArticle(payload), &resp)
	if err != nil {
		return nil, err
	}

	return &platform.DeliveryResult{
		ExternalID:  payload.ExternalID,
		ExternalURL: resp.URL,
		RawResponse: raw,
	}, nil
}

// Delete is not offered by the platform API; articles can only be
// unpublished through the web interface.
func (a *Adapter) Delete(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	return nil, platform.ErrUnsupported
}

func (a *Adapter) TestConnection(ctx context.Context) error {
	if !a.IsConfigured() {
		return platform.ErrNotConfigured
	}
	_, err := a.client.DoJSON(ctx, http.MethodGet, a.apiBase+"/users/me", nil, nil)
	return err
}
