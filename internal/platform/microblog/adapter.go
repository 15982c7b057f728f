// Package microblog delivers to the 280-character feed platform. Posts are
// immutable once published, so update is not offered.
package microblog

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/content"
	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

const defaultAPIBase = "https://api.microblog.example"

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
		client: platform.NewClient(formatter.PlatformMicroblog, platform.DefaultTimeout, map[string]string{
			"Authorization": "Bearer " + config["access_token"],
		}),
	}
}

func (a *Adapter) Name() string { return formatter.PlatformMicroblog }

func (a *Adapter) IsConfigured() bool {
	return platform.Complete(formatter.PlatformMicroblog, a.config)
}

// Posts carry at most four attached images.
const maxPostMedia = 4

type postRequest struct {
	Text  string     `json:"text"`
	Media *postMedia `json:"media,omitempty"`
}

type postMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type postResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (a *Adapter) Publish(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	req := postRequest{Text: payload.PlatformContent}
	if ids := a.uploadImages(ctx, payload.Images); len(ids) > 0 {
		req.Media = &postMedia{MediaIDs: ids}
	}

	var resp postResponse
	raw, err := a.client.DoJSON(ctx, http.MethodPost, a.apiBase+"/2/posts", req, &resp)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Post published",
		zap.String("platform", a.Name()),
		zap.String("external_id", resp.Data.ID))

	return &platform.DeliveryResult{
		ExternalID:  resp.Data.ID,
		ExternalURL: fmt.Sprintf("%s/status/%s", a.apiBase, resp.Data.ID),
		RawResponse: raw,
	}, nil
}

// Update is structurally impossible: published posts cannot be edited.
func (a *Adapter) Update(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	return nil, platform.ErrUnsupported
}

func (a *Adapter) Delete(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}
	if payload.ExternalID == "" {
		return nil, fmt.Errorf("post id is required for deletion")
	}

	raw, err := a.client.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/2/posts/%s", a.apiBase, payload.ExternalID), nil, nil)
	if err != nil {
		return nil, err
	}

	return &platform.DeliveryResult{ExternalID: payload.ExternalID, RawResponse: raw}, nil
}

func (a *Adapter) TestConnection(ctx context.Context) error {
	if !a.IsConfigured() {
		return platform.ErrNotConfigured
	}
	_, err := a.client.DoJSON(ctx, http.MethodGet, a.apiBase+"/2/users/me", nil, nil)
	return err
}

// Analytics implements platform.AnalyticsProvider.
func (a *Adapter) Analytics(ctx context.Context, externalID string) (map[string]int64, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	var resp struct {
		Data struct {
			PublicMetrics map[string]int64 `json:"public_metrics"`
		} `json:"data"`
	}
	if _, err := a.client.DoJSON(ctx, http.MethodGet,
		fmt.Sprintf("%s/2/posts/%s?fields=public_metrics", a.apiBase, externalID), nil, &resp); err != nil {
		return nil, err
	}

	return resp.Data.PublicMetrics, nil
}

// uploadImages uploads up to maxPostMedia images for attachment. A failed
// upload is logged and skipped; the post still goes out without it.
func (a *Adapter) uploadImages(ctx context.Context, images []content.Image) []string {
	var ids []string
	for _, img := range images {
		if len(ids) >= maxPostMedia {
			break
		}
		id, err := a.UploadMedia(ctx, img.URL)
		if err != nil {
			a.logger.Warn("Media upload failed",
				zap.String("platform", a.Name()),
				zap.String("url", img.URL),
				zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// UploadMedia implements platform.MediaUploader by downloading the image
// and re-uploading it base64-encoded.
func (a *Adapter) UploadMedia(ctx context.Context, imageURL string) (string, error) {
	if !a.IsConfigured() {
		return "", platform.ErrNotConfigured
	}

	data, contentType, err := downloadImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	req := map[string]string{
		"media_data": base64.StdEncoding.EncodeToString(data),
		"media_type": contentType,
	}
	var resp struct {
		MediaIDString string `json:"media_id_string"`
	}
	if _, err := a.client.DoJSON(ctx, http.MethodPost, a.apiBase+"/2/media/upload", req, &resp); err != nil {
		return "", err
	}

	return resp.MediaIDString, nil
}

func downloadImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: platform.MediaTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return data, contentType, nil
}
