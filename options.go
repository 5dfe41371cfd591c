package coursemap

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/report"
)

// config holds the pipeline settings.
type config struct {
	sink            report.Sink
	logger          *zerolog.Logger
	registrationFee bool
	intensityKey    bool
	schemaLint      bool
}

func defaultConfig() *config {
	return &config{}
}

// Option is a function that configures a Pipeline.
type Option func(*config) error

// WithSink receives every data-quality issue raised while decoding,
// folding and flattening.
func WithSink(sink report.Sink) Option {
	return func(c *config) error {
		if sink == nil {
			return errors.NewValidationError("sink", nil, "cannot be nil")
		}
		c.sink = sink
		return nil
	}
}

// WithLogger sets the logger used when the context carries none. Issues
// are also logged through it.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithRegistrationFeeInTotal adds each location's registration fee to the
// derived course totals.
func WithRegistrationFeeInTotal(enabled bool) Option {
	return func(c *config) error {
		c.registrationFee = enabled
		return nil
	}
}

// WithIntensityKey keeps courses of the same name but different lessons
// per week apart.
func WithIntensityKey(enabled bool) Option {
	return func(c *config) error {
		c.intensityKey = enabled
		return nil
	}
}

// WithSchemaLint reports schema violations of each partial record.
func WithSchemaLint(enabled bool) Option {
	return func(c *config) error {
		c.schemaLint = enabled
		return nil
	}
}
