package formatter

import (
	"errors"
	"time"

	"github.com/hubcast/hubcast/internal/content"
)

// Platform identifiers used across the queue, formatter and adapter registry.
const (
	PlatformMicroblog           = "microblog"
	PlatformSocialFeed          = "social-feed"
	PlatformProfessionalNetwork = "professional-network"
	PlatformLongForm            = "long-form"
	PlatformDevCommunity        = "dev-community"
	PlatformNewsletter          = "newsletter"
)

// ErrInvalidContent is returned when the content snapshot is missing or
// structurally unusable. Empty optional fields never trigger it.
var ErrInvalidContent = errors.New("invalid content")

// FormattedContent is the platform-specific rendering of a content item,
// produced once at enqueue time and frozen into the job payload.
type FormattedContent struct {
	ContentID   string          `json:"content_id"`
	Platform    string          `json:"platform"`
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	Excerpt     string          `json:"excerpt"`
	URL         string          `json:"url"`
	Author      string          `json:"author"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
	Categories  []string        `json:"categories"`
	Tags        []string        `json:"tags"`
	Images      []content.Image `json:"images"`
	Hashtags    []string        `json:"hashtags"`

	// Platform-derived fields, populated per formatter variant.
	PlatformContent string `json:"platform_content,omitempty"`
	ContentFormat   string `json:"content_format,omitempty"`
	PublishStatus   string `json:"publish_status,omitempty"`
	CanonicalURL    string `json:"canonical_url,omitempty"`
	Description     string `json:"description,omitempty"`
	MainImage       string `json:"main_image,omitempty"`
	SubjectLine     string `json:"subject_line,omitempty"`
	PreviewText     string `json:"preview_text,omitempty"`
	HTMLContent     string `json:"html_content,omitempty"`
	TextContent     string `json:"text_content,omitempty"`
	FromName        string `json:"from_name,omitempty"`
	ReplyTo         string `json:"reply_to,omitempty"`

	// ExternalID carries the previously delivered id for update/delete jobs.
	ExternalID string `json:"external_id,omitempty"`
}
