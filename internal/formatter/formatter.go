package formatter

import (
	"fmt"
	"strings"

	"github.com/hubcast/hubcast/internal/content"
	"github.com/hubcast/hubcast/pkg/util"
)

// Numeric contracts enforced at format time, not delivery time.
const (
	excerptLimit = 160
	maxImages    = 10

	microblogLimit         = 280
	microblogURLReserve    = 23 // shortened URL length on the wire
	microblogTagReserve    = 50
	microblogSeparators    = 4
	microblogHashtagCap    = 3
	socialFeedLimit        = 60000
	socialFeedCut          = 59950
	socialFeedHashtagCap   = 30
	professionalLimit      = 2800
	professionalCut        = 2750
	professionalHashtagCap = 5
	longFormTagCap         = 5
	devCommunityTagCap     = 4
)

// Formatter turns a content snapshot into a platform-specific payload via a
// dispatch table keyed by platform identifier. Unknown platforms fall back
// to generic formatting. Formatting is pure: the same inputs always produce
// the same output.
type Formatter struct {
	variants map[string]func(*FormattedContent)
}

func New() *Formatter {
	f := &Formatter{}
	f.variants = map[string]func(*FormattedContent){
		PlatformMicroblog:           f.forMicroblog,
		PlatformSocialFeed:          f.forSocialFeed,
		PlatformProfessionalNetwork: f.forProfessionalNetwork,
		PlatformLongForm:            f.forLongForm,
		PlatformDevCommunity:        f.forDevCommunity,
		PlatformNewsletter:          f.forNewsletter,
	}
	return f
}

// Format renders c for the given platform.
func (f *Formatter) Format(c *content.Content, platform string) (*FormattedContent, error) {
	if c == nil || (c.Title == "" && c.Body == "") {
		return nil, fmt.Errorf("%w: empty content snapshot", ErrInvalidContent)
	}

	fc := f.generic(c)
	fc.Platform = platform

	if variant, ok := f.variants[platform]; ok {
		variant(fc)
	}

	return fc, nil
}

// generic extracts the base fields every platform variant starts from.
func (f *Formatter) generic(c *content.Content) *FormattedContent {
	return &FormattedContent{
		ContentID:   c.ID,
		Title:       util.StripHTML(c.Title),
		Body:        strings.TrimSpace(c.Body),
		Excerpt:     f.excerpt(c),
		URL:         c.URL,
		Author:      c.Author,
		PublishedAt: c.PublishedAt,
		Categories:  append([]string{}, c.Categories...),
		Tags:        append([]string{}, c.Tags...),
		Images:      f.images(c),
		Hashtags:    f.hashtags(c),
	}
}

func (f *Formatter) excerpt(c *content.Content) string {
	excerpt := c.Excerpt
	if excerpt == "" {
		excerpt = util.StripHTML(c.Body)
	}
	excerpt = util.StripHTML(excerpt)
	return util.Truncate(excerpt, excerptLimit)
}

// images returns the featured image first, then up to maxImages inline
// images deduplicated by URL.
func (f *Formatter) images(c *content.Content) []content.Image {
	images := []content.Image{}
	seen := map[string]struct{}{}

	if c.FeaturedImage != nil && c.FeaturedImage.URL != "" {
		images = append(images, *c.FeaturedImage)
		seen[c.FeaturedImage.URL] = struct{}{}
	}

	inline := 0
	for _, img := range c.Images {
		if inline >= maxImages {
			break
		}
		if img.URL == "" {
			continue
		}
		if _, ok := seen[img.URL]; ok {
			continue
		}
		seen[img.URL] = struct{}{}
		images = append(images, img)
		inline++
	}

	return images
}

// hashtags collects taxonomy names and operator-supplied custom tags,
// slugified and deduplicated.
func (f *Formatter) hashtags(c *content.Content) []string {
	var tags []string
	for _, name := range c.Categories {
		tags = append(tags, util.Slugify(name))
	}
	for _, name := range c.Tags {
		tags = append(tags, util.Slugify(name))
	}
	for _, name := range c.CustomHashtags {
		tags = append(tags, util.Slugify(strings.TrimSpace(name)))
	}
	return util.Dedupe(tags)
}

func (f *Formatter) forMicroblog(fc *FormattedContent) {
	// Reserve a fixed budget for the shortened URL and hashtags before
	// truncating the title.
	available := microblogLimit - microblogURLReserve - microblogTagReserve - microblogSeparators

	text := fc.Title
	if len(text) > available {
		text = util.Truncate(text, available)
	}

	tags := fc.Hashtags
	if len(tags) > microblogHashtagCap {
		tags = tags[:microblogHashtagCap]
	}
	if len(tags) > 0 {
		parts := make([]string, len(tags))
		for i, tag := range tags {
			parts[i] = "#" + util.Hashtag(tag, true)
		}
		hashtagText := " " + strings.Join(parts, " ")
		if len(text+hashtagText+" "+fc.URL) <= microblogLimit {
			text += hashtagText
		}
	}

	fc.PlatformContent = text + "\n\n" + fc.URL
	fc.ContentFormat = "text"
}

func (f *Formatter) forSocialFeed(fc *FormattedContent) {
	body := util.StripHTMLPreserveLinks(fc.Body)
	text := fc.Title + "\n\n" + body

	if len(text) > socialFeedLimit {
		text = text[:socialFeedCut] + "... [Read more]"
	}

	tags := fc.Hashtags
	if len(tags) > socialFeedHashtagCap {
		tags = tags[:socialFeedHashtagCap]
	}
	if len(tags) > 0 {
		parts := make([]string, len(tags))
		for i, tag := range tags {
			parts[i] = "#" + util.Hashtag(tag, false)
		}
		text += "\n\n" + strings.Join(parts, " ")
	}

	fc.PlatformContent = text
	fc.ContentFormat = "text"
}

func (f *Formatter) forProfessionalNetwork(fc *FormattedContent) {
	body := util.StripHTMLPreserveLinks(fc.Body)
	text := fc.Title + "\n\n" + body

	if len(text) > professionalLimit {
		text = text[:professionalCut] + "...\n\nRead the full article: " + fc.URL
	} else {
		text += "\n\n" + fc.URL
	}

	tags := fc.Hashtags
	if len(tags) > professionalHashtagCap {
		tags = tags[:professionalHashtagCap]
	}
	if len(tags) > 0 {
		parts := make([]string, len(tags))
		for i, tag := range tags {
			parts[i] = "#" + util.Hashtag(tag, true)
		}
		text += "\n\n" + strings.Join(parts, " ")
	}

	fc.PlatformContent = text
	fc.ContentFormat = "text"
}

func (f *Formatter) forLongForm(fc *FormattedContent) {
	body := cleanHTML(fc.Body)

	// Attribution footer pointing back at the canonical post.
	if fc.URL != "" {
		body += fmt.Sprintf(`<hr><p><em>Originally published at <a href="%s">%s</a></em></p>`, fc.URL, fc.URL)
	}

	if len(fc.Tags) > longFormTagCap {
		fc.Tags = fc.Tags[:longFormTagCap]
	}

	fc.Body = body
	fc.PlatformContent = body
	fc.ContentFormat = "html"
	fc.PublishStatus = "draft"
	fc.CanonicalURL = fc.URL
}

func (f *Formatter) forDevCommunity(fc *FormattedContent) {
	markdown := HTMLToMarkdown(fc.Body)

	tags := fc.Hashtags
	if len(tags) > devCommunityTagCap {
		tags = tags[:devCommunityTagCap]
	}
	fc.Tags = tags

	var fm strings.Builder
	fm.WriteString("---\n")
	fm.WriteString("title: " + fc.Title + "\n")
	if len(tags) > 0 {
		fm.WriteString("tags: " + strings.Join(tags, ", ") + "\n")
	}
	fm.WriteString("canonical_url: " + fc.URL + "\n")
	fm.WriteString("---\n\n")

	fc.PlatformContent = fm.String() + markdown
	fc.ContentFormat = "markdown"
	fc.PublishStatus = "draft"
	fc.CanonicalURL = fc.URL
	fc.Description = fc.Excerpt
	if len(fc.Images) > 0 {
		fc.MainImage = fc.Images[0].URL
	}
}

func (f *Formatter) forNewsletter(fc *FormattedContent) {
	body := cleanHTMLForEmail(fc.Body)

	var html strings.Builder
	html.WriteString(emailStyles)
	html.WriteString(body)
	// Footer placeholders are substituted by the newsletter provider.
	html.WriteString(`<hr><p><a href="*|UNSUB|*">Unsubscribe</a> | <a href="*|UPDATE_PROFILE|*">Update preferences</a></p>`)

	fc.SubjectLine = fc.Title
	fc.PreviewText = fc.Excerpt
	fc.HTMLContent = html.String()
	fc.TextContent = util.StripHTML(body)
	fc.PlatformContent = fc.HTMLContent
	fc.ContentFormat = "html"
}

const emailStyles = `<style>
body { font-family: Arial, sans-serif; line-height: 1.6; }
h1, h2, h3 { color: #333; }
a { color: #0066cc; }
img { max-width: 100%; height: auto; }
</style>`
