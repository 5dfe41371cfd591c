// Package reconcile folds per-page partial school records into one
// canonical school.
//
// Pages are folded strictly in order because later pages may legitimately
// override earlier ones. A page that cannot be merged never stops the
// fold: it is reported, the school name and terms are salvaged from it
// where possible, and the previous accumulator carries forward.
package reconcile

import (
	"context"
	"fmt"

	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

// Reconciler folds ordered partial records.
type Reconciler interface {
	// Fold merges partials in order. Nil entries are skipped with a warning.
	Fold(ctx context.Context, partials []*school.School) *Result
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	merger Merger
	sink   report.Sink
}

// New creates a Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	r := &reconciler{merger: o.merger, sink: o.sink}
	if r.merger == nil {
		r.merger = newMerger(o)
	}
	return r, nil
}

// Fold is a convenience wrapper around New and Reconciler.Fold.
func Fold(ctx context.Context, partials []*school.School, opts ...Option) (*Result, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return r.Fold(ctx, partials), nil
}

// foldContext holds the state of one fold.
type foldContext struct {
	acc    school.School
	sink   report.Sink
	result *Result
}

// Fold merges partials in page order.
func (r *reconciler) Fold(ctx context.Context, partials []*school.School) *Result {
	logger := logging.FromContext(ctx)
	counter := &countingSink{next: r.sink}
	fctx := &foldContext{sink: counter, result: NewResult()}
	fctx.result.Metadata.Stats.Pages = len(partials)

	for i, partial := range partials {
		page := i + 1
		if partial == nil {
			fctx.sink.Report(report.Issue{
				Severity: report.Warning,
				Stage:    report.StageFold,
				Page:     page,
				Message:  "no record for page; skipped",
			})
			fctx.result.Metadata.Stats.Skipped++
			continue
		}
		r.add(fctx, page, partial)
		logger.Debug().
			Int("page", page).
			Int("locations", len(fctx.acc.Locations)).
			Msg("Folded page")
	}

	fctx.result.School = &fctx.acc
	fctx.result.Metadata.Stats.Locations, fctx.result.Metadata.Stats.Courses, fctx.result.Metadata.Stats.Prices = fctx.acc.Counts()
	fctx.result.Metadata.Stats.Issues = counter.n
	fctx.result.Finalize()

	logger.Info().
		Int("pages", fctx.result.Metadata.Stats.Pages).
		Int("skipped", fctx.result.Metadata.Stats.Skipped).
		Int("recovered", fctx.result.Metadata.Stats.Recovered).
		Int("locations", fctx.result.Metadata.Stats.Locations).
		Int("courses", fctx.result.Metadata.Stats.Courses).
		Msg("Fold complete")
	return fctx.result
}

// add merges one page. The accumulator is only replaced once the merge
// has fully succeeded.
func (r *reconciler) add(fctx *foldContext, page int, partial *school.School) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.NewMergeError(page, "", fmt.Errorf("%v", rec))
			fctx.sink.Report(report.Issue{
				Severity: report.Error,
				Stage:    report.StageFold,
				Page:     page,
				Message:  "merge failed; previous result kept",
				Err:      err,
			})
			fctx.result.Errors = append(fctx.result.Errors, err)
			fctx.result.Metadata.Stats.Recovered++
			salvage(fctx, page, partial)
		}
	}()

	m := r.merger
	if dm, ok := m.(*merger); ok {
		scoped := *dm
		scoped.sink = report.WithPage(fctx.sink, page)
		m = &scoped
	}
	fctx.acc = m.School(fctx.acc, *partial)
	fctx.result.Metadata.Stats.Folded++
}

// salvage copies the school name and terms of a page whose merge failed.
func salvage(fctx *foldContext, page int, partial *school.School) {
	defer func() {
		if rec := recover(); rec != nil {
			fctx.sink.Report(report.Issue{
				Severity: report.Error,
				Stage:    report.StageFold,
				Page:     page,
				Message:  "could not salvage name or terms",
				Err:      fmt.Errorf("%v", rec),
			})
		}
	}()
	if fctx.acc.Name == "" && partial.Name != "" {
		fctx.acc.Name = partial.Name
	}
	fctx.acc.Terms = overwrite(fctx.acc.Terms, partial.Terms)
}

// countingSink counts issues on their way to the configured sink.
type countingSink struct {
	next report.Sink
	n    int
}

func (c *countingSink) Report(i report.Issue) {
	c.n++
	report.OrDiscard(c.next).Report(i)
}
