// Package app provides the application context and dependency management
// for the coursemap CLI. It centralizes configuration, logging and the
// lazily created Gemini extractor.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/cmd/application"
	"github.com/agentstation/coursemap/internal/extract"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
)

// App represents the coursemap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Extractor instance (lazy-initialized, singleton)
	mu        sync.RWMutex
	extractor extract.Extractor
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment that can
// be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the format requested with --format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Pipeline returns a pipeline with the configured merge policy. Options in
// opts are applied after the configured ones.
func (a *App) Pipeline(opts ...coursemap.Option) (*coursemap.Pipeline, error) {
	base := []coursemap.Option{
		coursemap.WithLogger(a.logger),
		coursemap.WithRegistrationFeeInTotal(a.config.RegistrationFeeInTotal),
		coursemap.WithIntensityKey(a.config.CourseKeyIntensity),
		coursemap.WithSchemaLint(a.config.SchemaLint),
	}
	p, err := coursemap.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "pipeline", "", err)
	}
	return p, nil
}

// Extractor returns the Gemini extractor, creating it lazily if needed.
// This is thread-safe and ensures only one client is created.
func (a *App) Extractor(ctx context.Context) (extract.Extractor, error) {
	a.mu.RLock()
	if a.extractor != nil {
		e := a.extractor
		a.mu.RUnlock()
		return e, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.extractor != nil {
		return a.extractor, nil
	}

	g, err := extract.NewGemini(ctx, a.config.GeminiAPIKey, a.config.GeminiModel)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("model", g.Model()).Msg("Created Gemini extractor")

	a.extractor = g
	return g, nil
}

// ExtractOptions returns the runner options from the configuration.
func (a *App) ExtractOptions() []extract.Option {
	var opts []extract.Option
	if a.config.ExtractConcurrency > 0 {
		opts = append(opts, extract.WithConcurrency(a.config.ExtractConcurrency))
	}
	if a.config.ExtractAttempts > 0 {
		opts = append(opts, extract.WithRetry(a.config.ExtractAttempts, constants.RetryBackoff))
	}
	if a.config.ExtractMaxRepeats >= 0 {
		opts = append(opts, extract.WithRepeats(a.config.ExtractMaxRepeats))
	}
	return opts
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	a.extractor = nil
	a.mu.Unlock()
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "cannot be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// WithExtractor sets a custom extractor (useful for testing).
func WithExtractor(e extract.Extractor) Option {
	return func(a *App) error {
		a.extractor = e
		return nil
	}
}
