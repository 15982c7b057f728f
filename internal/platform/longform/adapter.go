// Package longform delivers HTML articles to the long-form publishing
// platform. Articles go up as drafts; the platform offers no update or
// delete API.
package longform

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

const defaultAPIBase = "https://api.longform.example/v1"

type Adapter struct {
	logger   *zap.Logger
	client   *platform.Client
	apiBase  string
	authorID string
	config   map[string]string
}

func New(logger *zap.Logger, config map[string]string) platform.Adapter {
	apiBase := config["api_base"]
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Adapter{
		logger:   logger,
		apiBase:  apiBase,
		authorID: config["author_id"],
		config:   config,
		client: platform.NewClient(formatter.PlatformLongForm, platform.DefaultTimeout, map[string]string{
			"Authorization": "Bearer " + config["access_token"],
		}),
	}
}

func (a *Adapter) Name() string { return formatter.PlatformLongForm }

func (a *Adapter) IsConfigured() bool {
	return platform.Complete(formatter.PlatformLongForm, a.config)
}

type articleRequest struct {
	Title         string   `json:"title"`
	ContentFormat string   `json:"contentFormat"`
	Content       string   `json:"content"`
	CanonicalURL  string   `json:"canonicalUrl,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	PublishStatus string   `json:"publishStatus"`
}

type articleResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

func (a *Adapter) Publish(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	status := payload.PublishStatus
	if status == "" {
		status = "draft"
	}

	req := articleRequest{
		Title:         payload.Title,
		ContentFormat: "html",
		Content:       payload.PlatformContent,
		CanonicalURL:  payload.CanonicalURL,
		Tags:          payload.Tags,
		PublishStatus: status,
	}

	var resp articleResponse
	raw, err := a.client.DoJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/users/%s/posts", a.apiBase, a.authorID), req, &resp)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Article draft created",
		zap.String("platform", a.Name()),
		zap.String("external_id", resp.Data.ID))

	return &platform.DeliveryResult{
		ExternalID:  resp.Data.ID,
		ExternalURL: resp.Data.URL,
		RawResponse: raw,
	}, nil
}

// Update is not offered by the platform API.
func (a *Adapter) Update(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	return nil, platform.ErrUnsupported
}

// Delete is not offered by the platform API.
func (a *Adapter) Delete(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	return nil, platform.ErrUnsupported
}

func (a *Adapter) TestConnection(ctx context.Context) error {
	if !a.IsConfigured() {
		return platform.ErrNotConfigured
	}
	_, err := a.client.DoJSON(ctx, http.MethodGet, a.apiBase+"/me", nil, nil)
	return err
}
