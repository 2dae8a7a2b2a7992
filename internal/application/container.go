// Package application wires the engine's services together from
// configuration.
package application

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/omniscience-ai/omniscience/internal/adapters/cache"
	"github.com/omniscience-ai/omniscience/internal/adapters/provider"
	"github.com/omniscience-ai/omniscience/internal/adapters/provider/gemini"
	"github.com/omniscience-ai/omniscience/internal/application/assistant"
	"github.com/omniscience-ai/omniscience/internal/application/dispatch"
	"github.com/omniscience-ai/omniscience/internal/application/ports"
	"github.com/omniscience-ai/omniscience/internal/application/runner"
	"github.com/omniscience-ai/omniscience/internal/application/session"
	domainErrors "github.com/omniscience-ai/omniscience/internal/domain/errors"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/config"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/logging"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/storage"
	"github.com/omniscience-ai/omniscience/internal/infrastructure/tracing"
)

// Container holds the engine's long-lived dependencies.
type Container struct {
	cfg      *config.Config
	logger   *logging.Logger
	tracer   *tracing.Tracer
	registry *provider.Registry
	runCache ports.CachePort
	db       *sql.DB
	sessions ports.SessionStoragePort
}

// NewContainer builds the dependency graph from configuration.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := logging.Init(logging.Config{
		Level:  logging.Level(cfg.Logging.Level),
		Format: logging.Format(cfg.Logging.Format),
	})

	tracer, err := tracing.Init(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ExporterType: tracing.ExporterType(cfg.Tracing.ExporterType),
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		ServiceName:  cfg.Tracing.ServiceName,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	c := &Container{
		cfg:      cfg,
		logger:   logger,
		tracer:   tracer,
		registry: provider.NewRegistry(),
	}

	if cfg.Provider.APIKey != "" {
		client := gemini.NewClient(gemini.Config{
			APIKey:     cfg.Provider.APIKey,
			BaseURL:    cfg.Provider.BaseURL,
			Timeout:    cfg.Provider.Timeout,
			MaxRetries: cfg.Provider.MaxRetries,
		})
		p, err := gemini.NewProvider(client)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize provider: %w", err)
		}
		c.registry.Register(p)
	}

	if cfg.Runner.CacheEnabled {
		c.runCache = cache.NewMemoryCache()
	}

	if cfg.Storage.Enabled {
		db, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open session storage: %w", err)
		}
		c.db = db
		c.sessions = storage.NewSessionRepository(db)
	}

	return c, nil
}

// Config returns the loaded configuration.
func (c *Container) Config() *config.Config { return c.cfg }

// Logger returns the application logger.
func (c *Container) Logger() *logging.Logger { return c.logger }

// Tracer returns the application tracer.
func (c *Container) Tracer() *tracing.Tracer { return c.tracer }

// Sessions returns the session storage, or nil when persistence is
// disabled.
func (c *Container) Sessions() ports.SessionStoragePort { return c.sessions }

// Provider returns the configured backend provider.
func (c *Container) Provider() (ports.ProviderPort, error) {
	p := c.registry.Get("gemini")
	if p == nil {
		return nil, domainErrors.ErrProviderDisabled
	}
	return p, nil
}

// BuildServices assembles the per-session services around sess.
func (c *Container) BuildServices(sess *session.Session) (*assistant.Service, *runner.Service, error) {
	p, err := c.Provider()
	if err != nil {
		return nil, nil, err
	}

	dispatcher := dispatch.NewDispatcher(sess.Store, c.logger)

	assist, err := assistant.NewService(p, sess, dispatcher, c.logger, c.tracer, assistant.Config{
		ModelID:        c.cfg.Assistant.Model,
		ThinkingBudget: c.cfg.Assistant.ThinkingBudget,
		MaxTokens:      c.cfg.Assistant.MaxTokens,
		Temperature:    c.cfg.Assistant.Temperature,
	})
	if err != nil {
		return nil, nil, err
	}

	run, err := runner.NewService(p, sess, c.runCache, c.logger, c.tracer, runner.Config{
		ModelID:   c.cfg.RunnerModel(),
		MaxTokens: c.cfg.Runner.MaxTokens,
		CacheTTL:  c.cfg.Runner.CacheTTL,
	})
	if err != nil {
		return nil, nil, err
	}

	return assist, run, nil
}

// Shutdown releases the container's resources.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
