package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/logger"
)

// Registry manages source driver registration and instantiation.
type Registry struct {
	drivers map[string]Factory
	logger  *zap.Logger
}

// Global registry instance, populated by the adapter packages' init
// functions. Registration happens before main runs, so no lock is held.
var globalRegistry = NewRegistry()

// NewRegistry creates an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Factory),
		logger:  logger.Get().With(zap.String("component", "source_registry")),
	}
}

// Register registers a source driver factory under its driver name.
func (r *Registry) Register(name string, factory Factory) error {
	if _, exists := r.drivers[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "source driver %s already registered", name)
	}

	r.drivers[name] = factory
	r.logger.Debug("source driver registered", zap.String("driver", name))
	return nil
}

// Open creates a Source for the configured driver.
func (r *Registry) Open(ctx context.Context, cfg *config.SourceConfig) (Source, error) {
	factory, exists := r.drivers[cfg.Driver]
	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "source driver %s not found", cfg.Driver)
	}

	src, err := factory(ctx, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeConnection, "failed to open source driver %s", cfg.Driver)
	}

	return src, nil
}

// Drivers returns the registered driver names.
func (r *Registry) Drivers() []string {
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	return names
}

// Register registers a driver factory with the global registry. Adapter
// packages call this from init; a duplicate name panics there, surfacing
// the wiring mistake at startup.
func Register(name string, factory Factory) {
	if err := globalRegistry.Register(name, factory); err != nil {
		panic(err)
	}
}

// Open creates a Source for the configured driver from the global
// registry.
func Open(ctx context.Context, cfg *config.SourceConfig) (Source, error) {
	return globalRegistry.Open(ctx, cfg)
}

// Drivers returns the driver names registered with the global registry.
func Drivers() []string {
	return globalRegistry.Drivers()
}
