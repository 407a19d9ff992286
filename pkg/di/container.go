// Package di provides dependency injection container
package di

import (
	"io"
	"log/slog"

	"github.com/ssargent/stockroom/pkg/config"
	"github.com/ssargent/stockroom/pkg/metrics"
	"github.com/ssargent/stockroom/pkg/session"
	"github.com/ssargent/stockroom/pkg/store"
)

// SessionFactory opens a session over both stores
type SessionFactory interface {
	OpenSession(cfg *config.Config, logger *slog.Logger, observer store.Observer) (*session.Session, error)
}

// SessionFactoryFunc adapts a function to SessionFactory
type SessionFactoryFunc func(cfg *config.Config, logger *slog.Logger, observer store.Observer) (*session.Session, error)

// OpenSession calls f
func (f SessionFactoryFunc) OpenSession(cfg *config.Config, logger *slog.Logger, observer store.Observer) (*session.Session, error) {
	return f(cfg, logger, observer)
}

// Container holds all the dependencies for the application
type Container struct {
	config         *config.Config
	logger         *slog.Logger
	metrics        *metrics.Metrics
	sessionFactory SessionFactory
}

// NewContainer creates a new dependency injection container with default
// configuration and a logger that discards output until one is set
func NewContainer() *Container {
	return &Container{
		config:         config.DefaultConfig(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:        metrics.NewMetrics(),
		sessionFactory: SessionFactoryFunc(session.Open),
	}
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// SetConfig replaces the active configuration
func (c *Container) SetConfig(cfg *config.Config) {
	c.config = cfg
}

// GetLogger returns the application logger
func (c *Container) GetLogger() *slog.Logger {
	return c.logger
}

// SetLogger replaces the application logger
func (c *Container) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// GetMetrics returns the metrics collector
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetSessionFactory returns the session factory
func (c *Container) GetSessionFactory() SessionFactory {
	return c.sessionFactory
}

// SetSessionFactory allows overriding the session factory (for testing)
func (c *Container) SetSessionFactory(factory SessionFactory) {
	c.sessionFactory = factory
}

// OpenSession opens a session with the container's config, logger and metrics
func (c *Container) OpenSession() (*session.Session, error) {
	return c.sessionFactory.OpenSession(c.config, c.logger, c.metrics)
}

// FlushMetrics writes the metrics textfile when one is configured
func (c *Container) FlushMetrics() error {
	if c.config.Metrics.Textfile == "" {
		return nil
	}
	return c.metrics.WriteTextfile(c.config.Metrics.Textfile)
}
