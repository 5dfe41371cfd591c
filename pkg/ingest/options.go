package ingest

import (
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/report"
)

type options struct {
	sink report.Sink
	lint bool
}

func defaultOptions() *options {
	return &options{sink: report.Discard}
}

// Option is a function that configures a Decoder.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSink sets where dropped or malformed fields are reported.
func WithSink(sink report.Sink) Option {
	return func(o *options) error {
		if sink == nil {
			return errors.NewValidationError("sink", nil, "cannot be nil")
		}
		o.sink = sink
		return nil
	}
}

// WithSchemaLint checks each record against the partial-record JSON schema
// before decoding and reports every violation. Decoding is unaffected.
func WithSchemaLint(enabled bool) Option {
	return func(o *options) error {
		o.lint = enabled
		return nil
	}
}
