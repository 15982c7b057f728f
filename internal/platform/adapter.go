package platform

import (
	"context"
	"encoding/json"

	"github.com/hubcast/hubcast/internal/formatter"
)

// DeliveryResult is the successful outcome of a publish/update/delete call.
type DeliveryResult struct {
	ExternalID  string          `json:"external_id"`
	ExternalURL string          `json:"external_url"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

// Adapter is the delivery capability contract implemented per platform.
// Adapters are cheap to construct and are built fresh for each job so that
// credential changes take effect on subsequently created instances only.
type Adapter interface {
	Name() string

	// IsConfigured reports whether the loaded credentials are complete.
	// Un-configured adapters reject all operations with ErrNotConfigured
	// instead of attempting a call.
	IsConfigured() bool

	Publish(ctx context.Context, payload *formatter.FormattedContent) (*DeliveryResult, error)
	Update(ctx context.Context, payload *formatter.FormattedContent) (*DeliveryResult, error)
	Delete(ctx context.Context, payload *formatter.FormattedContent) (*DeliveryResult, error)

	TestConnection(ctx context.Context) error
}

// AnalyticsProvider is the optional engagement-metrics capability.
type AnalyticsProvider interface {
	Analytics(ctx context.Context, externalID string) (map[string]int64, error)
}

// MediaUploader is the optional direct media upload capability. Platforms
// without a media API require externally hosted URLs instead.
type MediaUploader interface {
	UploadMedia(ctx context.Context, imageURL string) (string, error)
}

// Execute runs the named action against the adapter.
func Execute(ctx context.Context, a Adapter, action string, payload *formatter.FormattedContent) (*DeliveryResult, error) {
	switch action {
	case "publish":
		return a.Publish(ctx, payload)
	case "update":
		return a.Update(ctx, payload)
	case "delete":
		return a.Delete(ctx, payload)
	default:
		return nil, ErrUnsupported
	}
}
