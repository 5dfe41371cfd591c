package reconcile

import (
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/report"
)

// options configures a Merger and the fold driver.
type options struct {
	sink            report.Sink
	intensityKey    bool
	registrationFee bool
	merger          Merger
}

func defaultOptions() *options {
	return &options{sink: report.Discard}
}

// Option is a function that configures reconciliation.
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

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithSink sets where skipped sub-entities and recovered pages are reported.
func WithSink(sink report.Sink) Option {
	return func(o *options) error {
		if sink == nil {
			return errors.NewValidationError("sink", nil, "cannot be nil")
		}
		o.sink = sink
		return nil
	}
}

// WithIntensityKey keys courses by name and lessons per week, so the same
// course name at two intensities stays two courses. A course whose lessons
// per week is unknown still matches an existing course of the same name.
func WithIntensityKey(enabled bool) Option {
	return func(o *options) error {
		o.intensityKey = enabled
		return nil
	}
}

// WithRegistrationFeeInTotal adds a location's registration fee to each
// derived course total. Every course of the location receives the same
// fee, so totals summed across courses count it more than once.
func WithRegistrationFeeInTotal(enabled bool) Option {
	return func(o *options) error {
		o.registrationFee = enabled
		return nil
	}
}

// WithMerger replaces the pairwise merger used by the fold driver.
func WithMerger(m Merger) Option {
	return func(o *options) error {
		if m == nil {
			return errors.NewValidationError("merger", nil, "cannot be nil")
		}
		o.merger = m
		return nil
	}
}
