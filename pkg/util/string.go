package util

import (
	"regexp"
	"strings"
)

var (
	slugPattern    = regexp.MustCompile(`[^a-z0-9]+`)
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	linkPattern    = regexp.MustCompile(`(?i)<a[^>]+href=["']([^"']+)["'][^>]*>([^<]+)</a>`)
	wsPattern      = regexp.MustCompile(`[ \t]+`)
	entityReplacer = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#039;", "'", "&nbsp;", " ")
)

// Slugify creates a lowercase URL-friendly slug from a tag or title.
func Slugify(s string) string {
	slug := strings.ToLower(s)
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Truncate cuts s to at most max characters, appending an ellipsis when
// anything was removed.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// StripHTML removes all tags and decodes common entities.
func StripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	return strings.TrimSpace(wsPattern.ReplaceAllString(s, " "))
}

// StripHTMLPreserveLinks removes tags but keeps anchor targets inline as
// "text (url)".
func StripHTMLPreserveLinks(s string) string {
	s = linkPattern.ReplaceAllString(s, "$2 ($1)")
	return StripHTML(s)
}

// Hashtag turns a tag name into a hashtag token without the leading '#'.
// CamelCase variants keep word boundaries readable on space-limited feeds.
func Hashtag(tag string, camel bool) string {
	if !camel {
		return strings.NewReplacer(" ", "", "-", "").Replace(tag)
	}
	words := strings.FieldsFunc(tag, func(r rune) bool { return r == ' ' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "")
}

// Dedupe removes duplicates and empty strings, preserving first-seen order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
