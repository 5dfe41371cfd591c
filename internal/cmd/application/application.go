// Package application defines the interface commands use to reach the
// configured pipeline, extractor and logger.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/extract"
)

// Application is implemented by the CLI app and by Mock.
type Application interface {
	// Pipeline returns a pipeline built from the configuration plus opts.
	Pipeline(opts ...coursemap.Option) (*coursemap.Pipeline, error)

	// Extractor returns the configured page extractor.
	Extractor(ctx context.Context) (extract.Extractor, error)

	// ExtractOptions returns the runner options from the configuration.
	ExtractOptions() []extract.Option

	Logger() *zerolog.Logger
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
