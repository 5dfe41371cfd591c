package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/extract"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ExtractorFunc: func(context.Context) (extract.Extractor, error) {
//	        return fakePages, nil
//	    },
//	    OutputFormatFunc: func() string { return "json" },
//	}
//	cmd := extract.NewCommand(mock)
//	// ... test command
type Mock struct {
	PipelineFunc       func(opts ...coursemap.Option) (*coursemap.Pipeline, error)
	ExtractorFunc      func(ctx context.Context) (extract.Extractor, error)
	ExtractOptionsFunc func() []extract.Option
	LoggerFunc         func() *zerolog.Logger
	OutputFormatFunc   func() string
	VersionFunc        func() string
	CommitFunc         func() string
	DateFunc           func() string
	BuiltByFunc        func() string
}

// Pipeline returns a pipeline using the mock function or a default pipeline.
func (m *Mock) Pipeline(opts ...coursemap.Option) (*coursemap.Pipeline, error) {
	if m.PipelineFunc != nil {
		return m.PipelineFunc(opts...)
	}
	return coursemap.New(opts...)
}

// Extractor returns an extractor using the mock function or nil.
func (m *Mock) Extractor(ctx context.Context) (extract.Extractor, error) {
	if m.ExtractorFunc != nil {
		return m.ExtractorFunc(ctx)
	}
	return nil, nil
}

// ExtractOptions returns runner options using the mock function or none.
func (m *Mock) ExtractOptions() []extract.Option {
	if m.ExtractOptionsFunc != nil {
		return m.ExtractOptionsFunc()
	}
	return nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return ""
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
