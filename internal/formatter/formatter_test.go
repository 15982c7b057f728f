package formatter

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/hubcast/hubcast/internal/content"
)

func sampleContent() *content.Content {
	return &content.Content{
		ID:     "42",
		Title:  "Understanding Queue Semantics",
		Body:   "<p>Queues decouple producers from consumers.</p><p>This post walks through delivery guarantees.</p>",
		URL:    "https://blog.example.com/queue-semantics",
		Author: "Jordan",
		Categories: []string{
			"Engineering",
		},
		Tags: []string{"queues", "go"},
	}
}

func TestFormatRejectsEmptyContent(t *testing.T) {
	f := New()

	if _, err := f.Format(nil, PlatformMicroblog); err == nil {
		t.Fatal("expected error for nil content")
	}
	if _, err := f.Format(&content.Content{}, PlatformMicroblog); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestFormatUnknownPlatformFallsBack(t *testing.T) {
	f := New()

	fc, err := f.Format(sampleContent(), "somewhere-new")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if fc.Platform != "somewhere-new" {
		t.Errorf("platform = %q", fc.Platform)
	}
	if fc.Title == "" || fc.Excerpt == "" {
		t.Error("generic fields missing")
	}
	if fc.PlatformContent != "" {
		t.Errorf("unexpected platform content for unknown platform: %q", fc.PlatformContent)
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	f := New()

	for _, platform := range []string{
		PlatformMicroblog, PlatformSocialFeed, PlatformProfessionalNetwork,
		PlatformLongForm, PlatformDevCommunity, PlatformNewsletter,
	} {
		a, err := f.Format(sampleContent(), platform)
		if err != nil {
			t.Fatalf("Format(%s): %v", platform, err)
		}
		b, err := f.Format(sampleContent(), platform)
		if err != nil {
			t.Fatalf("Format(%s): %v", platform, err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: repeated formatting differs", platform)
		}
	}
}

func TestExcerptLimit(t *testing.T) {
	f := New()

	c := sampleContent()
	c.Excerpt = strings.Repeat("word ", 100)

	fc, err := f.Format(c, PlatformSocialFeed)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(fc.Excerpt) > excerptLimit {
		t.Errorf("excerpt length = %d, want <= %d", len(fc.Excerpt), excerptLimit)
	}
}

func TestMicroblogStaysWithinLimit(t *testing.T) {
	f := New()

	c := sampleContent()
	c.Title = strings.Repeat("A Very Long Title ", 30)
	c.Tags = []string{"one", "two", "three", "four", "five"}

	fc, err := f.Format(c, PlatformMicroblog)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(fc.PlatformContent) > microblogLimit {
		t.Errorf("content length = %d, want <= %d", len(fc.PlatformContent), microblogLimit)
	}
	if !strings.HasSuffix(fc.PlatformContent, "\n\n"+c.URL) {
		t.Errorf("content missing trailing URL: %q", fc.PlatformContent)
	}
}

func TestMicroblogHashtagsCamelCasedAndCapped(t *testing.T) {
	f := New()

	c := sampleContent()
	c.Title = "Short"
	c.Categories = nil
	c.Tags = []string{"web-development", "cloud-native", "unit-testing", "extra-tag"}

	fc, err := f.Format(c, PlatformMicroblog)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(fc.PlatformContent, "#WebDevelopment") {
		t.Errorf("missing camel-cased hashtag: %q", fc.PlatformContent)
	}
	if strings.Count(fc.PlatformContent, "#") != 3 {
		t.Errorf("hashtag count = %d, want 3: %q", strings.Count(fc.PlatformContent, "#"), fc.PlatformContent)
	}
}

func TestSocialFeedTruncation(t *testing.T) {
	f := New()

	c := sampleContent()
	c.Body = strings.Repeat("lorem ipsum dolor sit amet ", 3000)

	fc, err := f.Format(c, PlatformSocialFeed)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(fc.PlatformContent, "... [Read more]") {
		t.Error("truncated feed post missing read-more marker")
	}
}

func TestProfessionalNetworkAppendsURL(t *testing.T) {
	f := New()

	fc, err := f.Format(sampleContent(), PlatformProfessionalNetwork)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(fc.PlatformContent, "https://blog.example.com/queue-semantics") {
		t.Errorf("post missing source URL: %q", fc.PlatformContent)
	}

	// Long posts get cut with an explicit pointer to the full article.
	c := sampleContent()
	c.Body = strings.Repeat("paragraph after paragraph ", 200)
	fc, err = f.Format(c, PlatformProfessionalNetwork)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(fc.PlatformContent, "Read the full article: ") {
		t.Error("long post missing read-more pointer")
	}
}

func TestLongFormAttributionAndDraft(t *testing.T) {
	f := New()

	fc, err := f.Format(sampleContent(), PlatformLongForm)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(fc.PlatformContent, "Originally published at") {
		t.Error("missing attribution footer")
	}
	if fc.PublishStatus != "draft" {
		t.Errorf("publish status = %q, want draft", fc.PublishStatus)
	}
	if fc.CanonicalURL != "https://blog.example.com/queue-semantics" {
		t.Errorf("canonical url = %q", fc.CanonicalURL)
	}
}

func TestDevCommunityFrontMatter(t *testing.T) {
	f := New()

	c := sampleContent()
	c.Tags = []string{"queues", "go", "testing", "infra", "fifth-tag"}

	fc, err := f.Format(c, PlatformDevCommunity)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasPrefix(fc.PlatformContent, "---\n") {
		t.Error("missing front matter")
	}
	if !strings.Contains(fc.PlatformContent, "title: Understanding Queue Semantics\n") {
		t.Error("front matter missing title")
	}
	if !strings.Contains(fc.PlatformContent, "canonical_url: https://blog.example.com/queue-semantics\n") {
		t.Error("front matter missing canonical url")
	}
	if len(fc.Tags) > 4 {
		t.Errorf("tag count = %d, want <= 4", len(fc.Tags))
	}
	if fc.ContentFormat != "markdown" {
		t.Errorf("content format = %q", fc.ContentFormat)
	}
}

func TestNewsletterEmailBody(t *testing.T) {
	f := New()

	fc, err := f.Format(sampleContent(), PlatformNewsletter)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if fc.SubjectLine != "Understanding Queue Semantics" {
		t.Errorf("subject = %q", fc.SubjectLine)
	}
	if !strings.Contains(fc.HTMLContent, "*|UNSUB|*") {
		t.Error("missing unsubscribe placeholder")
	}
	if !strings.Contains(fc.HTMLContent, "*|UPDATE_PROFILE|*") {
		t.Error("missing preferences placeholder")
	}
	if strings.Contains(fc.TextContent, "<p>") {
		t.Error("text alternative still contains markup")
	}
}

func TestHashtagsDeduplicated(t *testing.T) {
	f := New()

	c := sampleContent()
	c.Categories = []string{"Go"}
	c.Tags = []string{"go", "GO", "queues"}

	fc, err := f.Format(c, PlatformSocialFeed)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := []string{"go", "queues"}
	if !reflect.DeepEqual(fc.Hashtags, want) {
		t.Errorf("hashtags = %v, want %v", fc.Hashtags, want)
	}
}

func TestImagesFeaturedFirstAndDeduplicated(t *testing.T) {
	f := New()

	c := sampleContent()
	c.FeaturedImage = &content.Image{URL: "https://img.example.com/hero.png"}
	c.Images = []content.Image{
		{URL: "https://img.example.com/hero.png"},
		{URL: "https://img.example.com/inline1.png"},
		{URL: "https://img.example.com/inline2.png"},
	}

	fc, err := f.Format(c, PlatformSocialFeed)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(fc.Images) != 3 {
		t.Fatalf("image count = %d, want 3", len(fc.Images))
	}
	if fc.Images[0].URL != "https://img.example.com/hero.png" {
		t.Errorf("featured image not first: %v", fc.Images[0])
	}
}

func TestImagesInlineCap(t *testing.T) {
	f := New()

	c := sampleContent()
	for i := 0; i < 15; i++ {
		c.Images = append(c.Images, content.Image{URL: fmt.Sprintf("https://img.example.com/inline%d.png", i)})
	}

	fc, err := f.Format(c, PlatformSocialFeed)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(fc.Images) != 10 {
		t.Fatalf("inline image count = %d, want 10", len(fc.Images))
	}

	c.FeaturedImage = &content.Image{URL: "https://img.example.com/hero.png"}
	fc, err = f.Format(c, PlatformSocialFeed)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if len(fc.Images) != 11 {
		t.Fatalf("image count with featured = %d, want 11", len(fc.Images))
	}
	if fc.Images[0].URL != "https://img.example.com/hero.png" {
		t.Errorf("featured image not first: %v", fc.Images[0])
	}
}
