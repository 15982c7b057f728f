package platform

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
)

type nopAdapter struct{}

func (nopAdapter) Name() string       { return formatter.PlatformMicroblog }
func (nopAdapter) IsConfigured() bool { return true }
func (nopAdapter) Publish(context.Context, *formatter.FormattedContent) (*DeliveryResult, error) {
	return &DeliveryResult{ExternalID: "1"}, nil
}
func (nopAdapter) Update(context.Context, *formatter.FormattedContent) (*DeliveryResult, error) {
	return nil, ErrUnsupported
}
func (nopAdapter) Delete(context.Context, *formatter.FormattedContent) (*DeliveryResult, error) {
	return nil, ErrUnsupported
}
func (nopAdapter) TestConnection(context.Context) error { return nil }

func nopFactory(*zap.Logger, map[string]string) Adapter { return nopAdapter{} }

func TestRegistryRejectsUnknownPlatform(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	if err := r.Register("nonexistent", nopFactory); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("Register unknown = %v, want ErrUnknownPlatform", err)
	}
	if _, err := r.Create("nonexistent", nil); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("Create unknown = %v, want ErrUnknownPlatform", err)
	}
}

func TestRegistryCreateWithoutFactory(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	if _, err := r.Create(formatter.PlatformMicroblog, nil); !errors.Is(err, ErrAdapterNotFound) {
		t.Errorf("Create unregistered = %v, want ErrAdapterNotFound", err)
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	if err := r.Register(formatter.PlatformMicroblog, nopFactory); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(formatter.PlatformMicroblog, nopFactory); err == nil {
		t.Error("expected error on duplicate registration")
	}

	adapter, err := r.Create(formatter.PlatformMicroblog, map[string]string{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if adapter.Name() != formatter.PlatformMicroblog {
		t.Errorf("adapter name = %q", adapter.Name())
	}
}

func TestPriorityOrdering(t *testing.T) {
	if Priority(formatter.PlatformMicroblog) >= Priority(formatter.PlatformNewsletter) {
		t.Error("microblog should outrank newsletter")
	}
	if got := Priority("something-else"); got != defaultPriority {
		t.Errorf("unknown platform priority = %d, want %d", got, defaultPriority)
	}
}

func TestExecuteDispatch(t *testing.T) {
	ctx := context.Background()
	payload := &formatter.FormattedContent{}

	result, err := Execute(ctx, nopAdapter{}, "publish", payload)
	if err != nil || result.ExternalID != "1" {
		t.Errorf("publish = (%v, %v)", result, err)
	}
	if _, err := Execute(ctx, nopAdapter{}, "update", payload); !errors.Is(err, ErrUnsupported) {
		t.Errorf("update = %v, want ErrUnsupported", err)
	}
	if _, err := Execute(ctx, nopAdapter{}, "sideways", payload); !errors.Is(err, ErrUnsupported) {
		t.Errorf("unknown action = %v, want ErrUnsupported", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrNotConfigured, false},
		{ErrUnsupported, false},
		{&APIError{Platform: "microblog", StatusCode: 500, Message: "oops"}, true},
		{errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestValidateCredentials(t *testing.T) {
	full := map[string]string{
		"api_key":             "k",
		"api_secret":          "s",
		"access_token":        "t",
		"access_token_secret": "ts",
	}
	if err := ValidateCredentials(formatter.PlatformMicroblog, full); err != nil {
		t.Errorf("complete credentials rejected: %v", err)
	}

	missing := map[string]string{"api_key": "k"}
	if err := ValidateCredentials(formatter.PlatformMicroblog, missing); err == nil {
		t.Error("incomplete credentials accepted")
	}

	if err := ValidateCredentials("nonexistent", full); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("unknown platform = %v, want ErrUnknownPlatform", err)
	}

	if !Complete(formatter.PlatformDevCommunity, map[string]string{"api_key": "k"}) {
		t.Error("dev-community with api_key should be complete")
	}
	if Complete(formatter.PlatformNewsletter, map[string]string{"api_key": "k"}) {
		t.Error("newsletter without list_id should be incomplete")
	}
}
