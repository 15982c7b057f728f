package platform

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
)

// Factory builds a fresh adapter instance from a credential blob. One
// instance serves exactly one job's processing window, so concurrent config
// updates only affect later jobs.
type Factory func(logger *zap.Logger, config map[string]string) Adapter

// Registry is the static map from platform key to adapter factory,
// populated once at startup. Unknown keys fail fast.
type Registry struct {
	factories map[string]Factory
	logger    *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		logger:    logger,
	}
}

func (r *Registry) Register(name string, factory Factory) error {
	if !Known(name) {
		return fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("adapter for platform %s already registered", name)
	}
	r.factories[name] = factory
	r.logger.Info("Adapter registered", zap.String("platform", name))
	return nil
}

// Create resolves the factory for a platform key and builds an adapter
// bound to the given credentials.
func (r *Registry) Create(name string, config map[string]string) (Adapter, error) {
	if !Known(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotFound, name)
	}
	return factory(r.logger, config), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Known reports whether the key names a platform this system understands,
// registered or not.
func Known(name string) bool {
	_, ok := priorities[name]
	return ok
}

// priorities sequences queue processing: lower is more time-sensitive.
var priorities = map[string]int{
	formatter.PlatformMicroblog:           1,
	formatter.PlatformSocialFeed:          2,
	formatter.PlatformProfessionalNetwork: 3,
	formatter.PlatformLongForm:            5,
	formatter.PlatformDevCommunity:        6,
	formatter.PlatformNewsletter:          9,
}

const defaultPriority = 5

// Priority returns the static queue priority for a platform.
func Priority(name string) int {
	if p, ok := priorities[name]; ok {
		return p
	}
	return defaultPriority
}
