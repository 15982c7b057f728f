package content

import (
	"time"
)

// Image is a media attachment referenced by a content item.
type Image struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Content is the read-only snapshot of a published content item as supplied
// by the originating content store. The syndication core never mutates it.
type Content struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Excerpt        string     `json:"excerpt"`
	URL            string     `json:"url"`
	Author         string     `json:"author"`
	PublishedAt    *time.Time `json:"published_at"`
	Categories     []string   `json:"categories"`
	Tags           []string   `json:"tags"`
	CustomHashtags []string   `json:"custom_hashtags"`
	FeaturedImage  *Image     `json:"featured_image"`
	Images         []Image    `json:"images"`
	SiteName       string     `json:"site_name"`
	SiteURL        string     `json:"site_url"`
	ReplyTo        string     `json:"reply_to"`
}
