package container

import (
	"context"
	"fmt"

	"statkit/adapters/api"
	"statkit/internal"
	"statkit/internal/analysis"
	"statkit/internal/batch"
	"statkit/internal/config"
)

// Container holds the application dependencies shared by the command line
// and the API server
type Container struct {
	Config *config.Config
	Logger *internal.Logger
	Engine *analysis.Engine

	server *api.Server
}

// New creates a container from a loaded configuration
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	// Package loggers derive from DefaultLogger, so the configured level
	// reaches them too.
	logger := internal.DefaultLogger
	logger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))
	return &Container{
		Config: cfg,
		Logger: logger,
		Engine: analysis.NewEngine(logger),
	}, nil
}

// Runner returns a batch runner. A concurrency below one uses the
// configured limit.
func (c *Container) Runner(concurrency int) *batch.Runner {
	if concurrency < 1 {
		concurrency = c.Config.Batch.Concurrency
	}
	return batch.NewRunner(concurrency, c.Config.Defaults(), c.Logger)
}

// Server returns the API server, creating it on first use
func (c *Container) Server() *api.Server {
	if c.server == nil {
		c.server = api.NewServer(c.Config, c.Logger)
	}
	return c.server
}

// Shutdown stops the API server if it was started
func (c *Container) Shutdown(ctx context.Context) error {
	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}
