package microblog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/content"
	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

func testConfig(apiBase string) map[string]string {
	return map[string]string{
		"api_key":             "k",
		"api_secret":          "s",
		"access_token":        "token-123",
		"access_token_secret": "ts",
		"api_base":            apiBase,
	}
}

func TestPublish(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/2/posts" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"987654"}}`))
	}))
	defer srv.Close()

	adapter := New(zap.NewNop(), testConfig(srv.URL))
	result, err := adapter.Publish(context.Background(), &formatter.FormattedContent{
		PlatformContent: "hello world\n\nhttps://blog.example.com/p",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if result.ExternalID != "987654" {
		t.Errorf("external id = %q", result.ExternalID)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody["text"] != "hello world\n\nhttps://blog.example.com/p" {
		t.Errorf("post text = %v", gotBody["text"])
	}
}

func TestPublishWithImages(t *testing.T) {
	imageBytes := []byte("png-bytes")
	var uploads []map[string]string
	var gotBody struct {
		Text  string `json:"text"`
		Media *struct {
			MediaIDs []string `json:"media_ids"`
		} `json:"media"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inline.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(imageBytes)
		case "/2/media/upload":
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			uploads = append(uploads, req)
			w.Write([]byte(`{"media_id_string":"media-1"}`))
		case "/2/posts":
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.Write([]byte(`{"data":{"id":"987654"}}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := New(zap.NewNop(), testConfig(srv.URL))
	result, err := adapter.Publish(context.Background(), &formatter.FormattedContent{
		PlatformContent: "with picture",
		Images:          []content.Image{{URL: srv.URL + "/inline.png"}},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.ExternalID != "987654" {
		t.Errorf("external id = %q", result.ExternalID)
	}

	if len(uploads) != 1 {
		t.Fatalf("upload count = %d, want 1", len(uploads))
	}
	if uploads[0]["media_data"] != base64.StdEncoding.EncodeToString(imageBytes) {
		t.Errorf("media_data = %q", uploads[0]["media_data"])
	}
	if uploads[0]["media_type"] != "image/png" {
		t.Errorf("media_type = %q", uploads[0]["media_type"])
	}

	if gotBody.Media == nil || len(gotBody.Media.MediaIDs) != 1 || gotBody.Media.MediaIDs[0] != "media-1" {
		t.Errorf("post media = %+v", gotBody.Media)
	}
}

func TestPublishSkipsFailedUpload(t *testing.T) {
	var gotBody struct {
		Media *struct {
			MediaIDs []string `json:"media_ids"`
		} `json:"media"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken.png":
			w.WriteHeader(http.StatusNotFound)
		case "/2/posts":
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.Write([]byte(`{"data":{"id":"987654"}}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := New(zap.NewNop(), testConfig(srv.URL))
	result, err := adapter.Publish(context.Background(), &formatter.FormattedContent{
		PlatformContent: "no picture after all",
		Images:          []content.Image{{URL: srv.URL + "/broken.png"}},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if result.ExternalID != "987654" {
		t.Errorf("external id = %q", result.ExternalID)
	}
	if gotBody.Media != nil {
		t.Errorf("post media = %+v, want none", gotBody.Media)
	}
}

func TestPublishAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	adapter := New(zap.NewNop(), testConfig(srv.URL))
	_, err := adapter.Publish(context.Background(), &formatter.FormattedContent{PlatformContent: "x"})

	var apiErr *platform.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "rate limit exceeded" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if !platform.Retryable(err) {
		t.Error("API errors should be retryable")
	}
}

func TestPublishNotConfigured(t *testing.T) {
	adapter := New(zap.NewNop(), map[string]string{"api_key": "k"})

	_, err := adapter.Publish(context.Background(), &formatter.FormattedContent{PlatformContent: "x"})
	if !errors.Is(err, platform.ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
	if platform.Retryable(err) {
		t.Error("configuration errors should not be retryable")
	}
}

func TestUpdateUnsupported(t *testing.T) {
	adapter := New(zap.NewNop(), testConfig(""))

	_, err := adapter.Update(context.Background(), &formatter.FormattedContent{})
	if !errors.Is(err, platform.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/2/posts/42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"data":{"deleted":true}}`))
	}))
	defer srv.Close()

	adapter := New(zap.NewNop(), testConfig(srv.URL))
	result, err := adapter.Delete(context.Background(), &formatter.FormattedContent{ExternalID: "42"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if result.ExternalID != "42" {
		t.Errorf("external id = %q", result.ExternalID)
	}

	if _, err := adapter.Delete(context.Background(), &formatter.FormattedContent{}); err == nil {
		t.Error("expected error without external id")
	}
}

func TestAnalytics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"public_metrics":{"impression_count":1200,"like_count":34}}}`))
	}))
	defer srv.Close()

	adapter := New(zap.NewNop(), testConfig(srv.URL))
	provider, ok := adapter.(platform.AnalyticsProvider)
	if !ok {
		t.Fatal("adapter should provide analytics")
	}

	metrics, err := provider.Analytics(context.Background(), "987654")
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if metrics["impression_count"] != 1200 || metrics["like_count"] != 34 {
		t.Errorf("metrics = %v", metrics)
	}
}
