package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap/pkg/constants"
)

// TestLoadConfig verifies defaults when nothing is configured.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultGeminiModel, config.GeminiModel)
	assert.Equal(t, constants.DefaultPageConcurrency, config.ExtractConcurrency)
	assert.Equal(t, constants.MaxPageRepeats, config.ExtractMaxRepeats)
	assert.Equal(t, uint(constants.MaxRetries), config.ExtractAttempts)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Empty(t, config.LogLevel, "LOG_LEVEL must not masquerade as --log-level")
}

// TestConfig_EnvironmentVariables verifies environment variable loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("REGISTRATION_FEE_IN_TOTAL", "true")
	t.Setenv("COURSE_KEY_INTENSITY", "1")
	t.Setenv("EXTRACT_CONCURRENCY", "2")
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, config.RegistrationFeeInTotal)
	assert.True(t, config.CourseKeyIntensity)
	assert.False(t, config.SchemaLint)
	assert.Equal(t, 2, config.ExtractConcurrency)
	assert.Equal(t, "gemini-test", config.GeminiModel)
	assert.Equal(t, "debug", config.EnvLogLevel)
	assert.Empty(t, config.LogLevel)
}

// TestConfig_APIKey verifies both key variables are honored.
func TestConfig_APIKey(t *testing.T) {
	t.Run("gemini key", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "gem")
		config, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "gem", config.GeminiAPIKey)
	})

	t.Run("google key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "goo")
		config, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "goo", config.GeminiAPIKey)
	})
}

// TestLoadConfigFile verifies an explicit config file is read.
func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coursemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema_lint: true\nextract_max_repeats: 1\ngemini_model: from-file\n"), 0o644))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.True(t, config.SchemaLint)
	assert.Equal(t, 1, config.ExtractMaxRepeats)
	assert.Equal(t, "from-file", config.GeminiModel)
	assert.Equal(t, path, config.ConfigFile)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// TestConfig_UpdateFromFlags verifies flag values take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: ""}

	config.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format, "empty flag keeps configured format")

	config.UpdateFromFlags(false, true, false, "json", "error")
	assert.True(t, config.Quiet)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "error", config.LogLevel)
}
