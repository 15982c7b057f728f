package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPlatform is returned for platform keys the registry has
	// never heard of.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrAdapterNotFound is returned for known platform keys with no
	// registered adapter factory.
	ErrAdapterNotFound = errors.New("adapter not found")

	// ErrNotConfigured is returned when an adapter's credentials are
	// missing or incomplete. Never retried: retrying cannot help until an
	// operator fixes the configuration.
	ErrNotConfigured = errors.New("platform not configured")

	// ErrUnsupported is returned when a platform structurally does not
	// offer an operation (e.g. updating an immutable post). Never retried.
	ErrUnsupported = errors.New("operation not supported by platform")
)

// APIError carries the upstream HTTP status and, when parseable, the
// platform's structured error message.
type APIError struct {
	Platform   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Platform, e.StatusCode, e.Message)
}

// Retryable reports whether a delivery failure is worth another attempt.
// Configuration and capability errors are terminal; API errors, timeouts
// and transport failures are retryable up to the job's attempt budget.
func Retryable(err error) bool {
	return !errors.Is(err, ErrNotConfigured) && !errors.Is(err, ErrUnsupported)
}
