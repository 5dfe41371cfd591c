package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap/internal/extract"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/logging"
)

func testConfig() *Config {
	return &Config{
		LogFormat:          "json",
		LogOutput:          "discard",
		GeminiModel:        "gemini-test",
		ExtractConcurrency: 2,
		ExtractMaxRepeats:  1,
		ExtractAttempts:    2,
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithConfig(testConfig())}, opts...)
	a, err := New("1.0.0", "abc123", "2026-01-01", "test", opts...)
	require.NoError(t, err)
	return a
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, "1.0.0", a.Version())
	assert.Equal(t, "abc123", a.Commit())
	assert.Equal(t, "2026-01-01", a.Date())
	assert.Equal(t, "test", a.BuiltBy())
	assert.NotNil(t, a.Logger())
	assert.Equal(t, "gemini-test", a.Config().GeminiModel)
}

// TestApp_Options verifies nil options are rejected.
func TestApp_Options(t *testing.T) {
	_, err := New("dev", "", "", "", WithConfig(nil))
	assert.True(t, errors.IsValidationError(err))

	_, err = New("dev", "", "", "", WithLogger(nil))
	assert.True(t, errors.IsValidationError(err))

	logger := zerolog.Nop()
	a, err := New("dev", "", "", "", WithLogger(&logger))
	require.NoError(t, err)
	assert.Same(t, &logger, a.Logger())
}

// TestApp_Extractor_Singleton verifies concurrent callers share one extractor.
func TestApp_Extractor_Singleton(t *testing.T) {
	stub := extract.ExtractorFunc(func(context.Context, extract.Page) (json.RawMessage, error) {
		return json.RawMessage(`{}`), nil
	})
	a := newTestApp(t, WithExtractor(stub))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := a.Extractor(context.Background())
			assert.NoError(t, err)
			assert.NotNil(t, e)
		}()
	}
	wg.Wait()
}

// TestApp_Extractor_RequiresKey verifies a missing API key surfaces.
func TestApp_Extractor_RequiresKey(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Extractor(context.Background())
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

// TestApp_ExtractOptions verifies configured runner options are valid.
func TestApp_ExtractOptions(t *testing.T) {
	a := newTestApp(t)
	opts := a.ExtractOptions()
	assert.Len(t, opts, 3)

	stub := extract.ExtractorFunc(func(context.Context, extract.Page) (json.RawMessage, error) {
		return nil, nil
	})
	_, err := extract.NewRunner(stub, opts...)
	assert.NoError(t, err)
}

// TestApp_Pipeline verifies the configured merge policy reaches the pipeline.
func TestApp_Pipeline(t *testing.T) {
	cfg := testConfig()
	cfg.RegistrationFeeInTotal = true
	a := newTestApp(t, WithConfig(cfg))

	p, err := a.Pipeline()
	require.NoError(t, err)

	res := p.FoldJSON(context.Background(), []json.RawMessage{json.RawMessage(`{
		"school_name": "CES",
		"locations": [{"city": "Cork", "country": "IE",
			"courses": [{"name": "GE", "prices": [{"duration": "1 week", "price": "€200"}]}],
			"additional_fees": [{"name": "registration", "price": "€50"}]}]
	}`)})
	total := res.School.Locations[0].Courses[0].TotalFee
	require.NotNil(t, total)
	assert.Equal(t, 250.0, total.Value)
}

// TestApp_Execute runs commands through the root command.
func TestApp_Execute(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		a := newTestApp(t)
		root := a.createRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"version"})

		require.NoError(t, root.ExecuteContext(context.Background()))
		assert.Equal(t, "coursemap 1.0.0\n", out.String())
	})

	t.Run("version verbose", func(t *testing.T) {
		a := newTestApp(t)
		root := a.createRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"version", "-v"})

		require.NoError(t, root.ExecuteContext(context.Background()))
		assert.Contains(t, out.String(), "commit:   abc123")
	})

	t.Run("merge with format flag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "page.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"school_name": "CES"}`), 0o644))

		a := newTestApp(t)
		root := a.createRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"merge", path, "-o", "json"})

		require.NoError(t, root.ExecuteContext(context.Background()))
		assert.JSONEq(t, `{"name": "CES"}`, out.String())
		assert.Equal(t, "json", a.OutputFormat())
	})

	t.Run("man", func(t *testing.T) {
		a := newTestApp(t)
		root := a.createRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"man"})

		require.NoError(t, root.ExecuteContext(context.Background()))
		assert.Contains(t, out.String(), "COURSEMAP")
	})

	t.Run("log level flag reaches default logger", func(t *testing.T) {
		original, level := *logging.Default(), zerolog.GlobalLevel()
		t.Cleanup(func() {
			logging.SetDefault(original)
			zerolog.SetGlobalLevel(level)
		})

		a := newTestApp(t)
		root := a.createRootCommand()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"version", "--log-level", "error"})

		require.NoError(t, root.ExecuteContext(context.Background()))
		assert.Equal(t, zerolog.ErrorLevel, logging.Default().GetLevel())
		assert.Equal(t, zerolog.ErrorLevel, a.Logger().GetLevel())
	})

	t.Run("unknown command", func(t *testing.T) {
		a := newTestApp(t)
		err := a.Execute(context.Background(), []string{"serve"})
		assert.Error(t, err)
	})
}

// TestExitCode verifies invalid input is told apart from failures.
func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(errors.NewValidationError("format", "xml", "unknown")))
	assert.Equal(t, 2, exitCode(errors.WrapValidation("format", errors.New("invalid format"))))
	assert.Equal(t, 1, exitCode(errors.WrapIO("read", "page.json", errors.New("missing"))))
}

// TestApp_Shutdown verifies shutdown releases the extractor.
func TestApp_Shutdown(t *testing.T) {
	stub := extract.ExtractorFunc(func(context.Context, extract.Page) (json.RawMessage, error) {
		return nil, nil
	})
	a := newTestApp(t, WithExtractor(stub))
	require.NoError(t, a.Shutdown(context.Background()))

	// The next call builds a real client, which needs a key.
	_, err := a.Extractor(context.Background())
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}
