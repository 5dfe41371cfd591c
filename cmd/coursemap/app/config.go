package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/coursemap/pkg/constants"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Merge policy
	RegistrationFeeInTotal bool
	CourseKeyIntensity     bool
	SchemaLint             bool

	// Extraction
	GeminiModel        string
	GeminiAPIKey       string
	ExtractConcurrency int
	ExtractMaxRepeats  int
	ExtractAttempts    uint

	// Logging configuration. LogLevel is only set by --log-level; the
	// LOG_LEVEL environment value is kept apart so -v and -q can beat it.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.coursemap.yaml or ./.coursemap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig("")
}

// LoadConfigFile is LoadConfig with an explicit config file.
func LoadConfigFile(path string) (*Config, error) {
	return loadConfig(path)
}

func loadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if err := v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".coursemap")

		// Read config file (ignore error if not found)
		_ = v.ReadInConfig()
	}

	return &Config{
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),

		RegistrationFeeInTotal: v.GetBool("registration_fee_in_total"),
		CourseKeyIntensity:     v.GetBool("course_key_intensity"),
		SchemaLint:             v.GetBool("schema_lint"),

		GeminiModel:        v.GetString("gemini_model"),
		GeminiAPIKey:       v.GetString("gemini_api_key"),
		ExtractConcurrency: v.GetInt("extract_concurrency"),
		ExtractMaxRepeats:  v.GetInt("extract_max_repeats"),
		ExtractAttempts:    v.GetUint("extract_attempts"),

		EnvLogLevel: v.GetString("log_level"),
		LogFormat:   v.GetString("log_format"),
		LogOutput:   v.GetString("log_output"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini_model", constants.DefaultGeminiModel)
	v.SetDefault("extract_concurrency", constants.DefaultPageConcurrency)
	v.SetDefault("extract_max_repeats", constants.MaxPageRepeats)
	v.SetDefault("extract_attempts", constants.MaxRetries)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// godotenv never overrides a variable that is already set, so the
	// first file to define a key wins.
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
