// Package constants provides shared constants used throughout the coursemap codebase.
// This includes timeouts, limits, file permissions, and the fixed strings that
// appear in flattened output.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// PageExtractTimeout bounds a single model call for one page
	PageExtractTimeout = 2 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 30 * time.Minute

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of retry attempts for a failed model call
	MaxRetries = 3

	// MaxPageRepeats is how many times a page is re-asked when the model sets repeat
	MaxPageRepeats = 3

	// DefaultPageConcurrency is the number of pages extracted at once
	DefaultPageConcurrency = 4

	// MaxDescriptionLength is the longest accommodation description kept in a row
	MaxDescriptionLength = 200

	// MaxDocumentBytes is the largest PDF sent inline to the model
	MaxDocumentBytes = 20 << 20
)

// Extraction defaults
const (
	// DefaultGeminiModel is the model used when none is configured
	DefaultGeminiModel = "gemini-2.5-flash"
)

// Sentinel values written into a row field whose formatter failed
const (
	ErrorFormattingAccommodations = "ERROR_FORMATTING_ACCOMMODATIONS"
	ErrorFormattingFees           = "ERROR_FORMATTING_FEES"
	ErrorFormattingTerms          = "ERROR_FORMATTING_TERMS"
)

// Placeholder is rendered for a missing accommodation type.
const Placeholder = "N/A"
