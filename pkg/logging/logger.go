// Package logging provides structured logging for the coursemap system using zerolog.
// Console output is used on a terminal and JSON lines everywhere else.
//
// Loggers travel with the context so that a fold or an extraction run can
// tag every line with its run id, document and page:
//
//	ctx := logging.WithLogger(context.Background(), logging.Default())
//	ctx = logging.WithOperation(logging.WithPage(ctx, 3), "fold")
//	logging.FromContext(ctx).Debug().Msg("Folding page")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger is used when no logger travels with the context.
var defaultLogger = NewLoggerFromConfig(envConfig())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the default logger, also for the zerolog/log package.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// envConfig reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT and NO_COLOR. DEBUG
// selects debug level when LOG_LEVEL is unset.
func envConfig() *Config {
	cfg := DefaultConfig()
	cfg.Level = getEnvOrDefault("LOG_LEVEL", cfg.Level)
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	cfg.Format = getEnvOrDefault("LOG_FORMAT", cfg.Format)
	cfg.Output = getEnvOrDefault("LOG_OUTPUT", cfg.Output)
	return cfg
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
