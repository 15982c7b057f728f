package util

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Web Development", "web-development"},
		{"Go & Rust", "go-rust"},
		{"  spaced  out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
		{"UPPER", "upper"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q", got)
	}
	got := Truncate("a very long string indeed", 10)
	if len(got) != 10 {
		t.Errorf("Truncate length = %d, want 10", len(got))
	}
	if got[7:] != "..." {
		t.Errorf("Truncate missing ellipsis: %q", got)
	}

	// No room for an ellipsis below four characters.
	if got := Truncate("overflow", 2); got != "ov" {
		t.Errorf("Truncate tiny max = %q, want %q", got, "ov")
	}
	if got := Truncate("overflow", 3); got != "ove" {
		t.Errorf("Truncate max 3 = %q, want %q", got, "ove")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <strong>world</strong></p>", "Hello world"},
		{"a &amp; b", "a & b"},
		{"no markup", "no markup"},
		{"<img src='x'>", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripHTMLPreserveLinks(t *testing.T) {
	in := `See <a href="https://example.com/x">the docs</a> for more.`
	want := "See the docs (https://example.com/x) for more."
	if got := StripHTMLPreserveLinks(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHashtag(t *testing.T) {
	if got := Hashtag("web-development", true); got != "WebDevelopment" {
		t.Errorf("camel = %q", got)
	}
	if got := Hashtag("web-development", false); got != "webdevelopment" {
		t.Errorf("flat = %q", got)
	}
	if got := Hashtag("go", true); got != "Go" {
		t.Errorf("single word = %q", got)
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"a", "", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %v, want %v", got, want)
	}
}
