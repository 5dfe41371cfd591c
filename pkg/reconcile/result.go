package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/coursemap/pkg/school"
)

// Result represents the outcome of a fold.
type Result struct {
	// School is the canonical record. It is never nil.
	School *school.School

	// Metadata
	Metadata ResultMetadata

	// Errors holds the recovered per-page merge failures.
	Errors []error
}

// ResultMetadata contains metadata about the fold.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stats     ResultStatistics
}

// ResultStatistics contains statistics about the fold. Pages counts the
// records folded, which is more than the PDF page count when the model
// answered a page in several parts.
type ResultStatistics struct {
	Pages       int
	Folded      int
	Skipped     int
	Recovered   int
	Locations   int
	Courses     int
	Prices      int
	Issues      int
	TotalTimeMs int64
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		School: &school.School{},
		Errors: []error{},
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// IsSuccess returns true if every page merged without recovery.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0
}

// Summary returns a human-readable summary of the result. Page numbers
// here and in reported issues are 1-based record positions.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	msg := fmt.Sprintf("Folded %d of %d pages into %d locations, %d courses, %d prices",
		s.Folded, s.Pages, s.Locations, s.Courses, s.Prices)
	if s.Skipped > 0 {
		msg += fmt.Sprintf("; %d skipped", s.Skipped)
	}
	if !r.IsSuccess() {
		msg += fmt.Sprintf("; %d recovered after merge errors", s.Recovered)
	}
	if s.Issues > 0 {
		msg += fmt.Sprintf(" (%d issues)", s.Issues)
	}
	return msg + "."
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
