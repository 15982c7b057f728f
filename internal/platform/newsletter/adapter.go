// Package newsletter delivers content as an email campaign. A publish is a
// two-step call: create the campaign, then trigger the send. Sent campaigns
// cannot be edited or recalled, so update and delete are not offered.
package newsletter

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

const defaultAPIBase = "https://mail.newsletter.example/3.0"

type Adapter struct {
	logger  *zap.Logger
	client  *platform.Client
	apiBase string
	listID  string
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
		listID:  config["list_id"],
		config:  config,
		client: platform.NewClient(formatter.PlatformNewsletter, platform.DefaultTimeout, map[string]string{
			"Authorization": "Bearer " + config["api_key"],
		}),
	}
}

func (a *Adapter) Name() string { return formatter.PlatformNewsletter }

func (a *Adapter) IsConfigured() bool {
	return platform.Complete(formatter.PlatformNewsletter, a.config)
}

type campaignRequest struct {
	Type       string `json:"type"`
	Recipients struct {
		ListID string `json:"list_id"`
	} `json:"recipients"`
	Settings struct {
		SubjectLine string `json:"subject_line"`
		PreviewText string `json:"preview_text"`
		FromName    string `json:"from_name,omitempty"`
		ReplyTo     string `json:"reply_to,omitempty"`
	} `json:"settings"`
	Content struct {
		HTML      string `json:"html"`
		PlainText string `json:"plain_text"`
	} `json:"content"`
}

type campaignResponse struct {
	ID         string `json:"id"`
	ArchiveURL string `json:"archive_url"`
}

func (a *Adapter) Publish(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	var req campaignRequest
	req.Type = "regular"
	req.Recipients.ListID = a.listID
	req.Settings.SubjectLine = payload.SubjectLine
	req.Settings.PreviewText = payload.PreviewText
	req.Settings.FromName = a.config["from_name"]
	req.Settings.ReplyTo = payload.ReplyTo
	req.Content.HTML = payload.HTMLContent
	req.Content.PlainText = payload.TextContent

	var resp campaignResponse
	raw, err := a.client.DoJSON(ctx, http.MethodPost, a.apiBase+"/campaigns", req, &resp)
	if err != nil {
		return nil, err
	}

	if _, err := a.client.DoJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/campaigns/%s/actions/send", a.apiBase, resp.ID), nil, nil); err != nil {
		return nil, fmt.Errorf("campaign %s created but send failed: %w", resp.ID, err)
	}

	a.logger.Info("Campaign sent",
		zap.String("platform", a.Name()),
		zap.String("external_id", resp.ID))

	return &platform.DeliveryResult{
		ExternalID:  resp.ID,
		ExternalURL: resp.ArchiveURL,
		RawResponse: raw,
	}, nil
}

// Update is structurally impossible: a sent campaign cannot be edited.
func (a *Adapter) Update(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	return nil, platform.ErrUnsupported
}

// Delete is structurally impossible: a sent campaign cannot be recalled.
func (a *Adapter) Delete(ctx context.Context, payload *formatter.FormattedContent) (*platform.DeliveryResult, error) {
	return nil, platform.ErrUnsupported
}

func (a *Adapter) TestConnection(ctx context.Context) error {
	if !a.IsConfigured() {
		return platform.ErrNotConfigured
	}
	_, err := a.client.DoJSON(ctx, http.MethodGet, a.apiBase+"/ping", nil, nil)
	return err
}

// Analytics implements platform.AnalyticsProvider from campaign report
// totals.
func (a *Adapter) Analytics(ctx context.Context, externalID string) (map[string]int64, error) {
	if !a.IsConfigured() {
		return nil, platform.ErrNotConfigured
	}

	var resp struct {
		EmailsSent int64 `json:"emails_sent"`
		Opens      struct {
			UniqueOpens int64 `json:"unique_opens"`
		} `json:"opens"`
		Clicks struct {
			UniqueClicks int64 `json:"unique_clicks"`
		} `json:"clicks"`
	}
	if _, err := a.client.DoJSON(ctx, http.MethodGet,
		fmt.Sprintf("%s/reports/%s", a.apiBase, externalID), nil, &resp); err != nil {
		return nil, err
	}

	return map[string]int64{
		"emails_sent":   resp.EmailsSent,
		"unique_opens":  resp.Opens.UniqueOpens,
		"unique_clicks": resp.Clicks.UniqueClicks,
	}, nil
}
