package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/coursemap/pkg/report"
)

type options struct {
	concurrency int
	attempts    uint
	delay       time.Duration
	maxDelay    time.Duration
	repeats     int
	sink        report.Sink
}

func defaultOptions() *options {
	return &options{
		concurrency: constants.DefaultPageConcurrency,
		attempts:    constants.MaxRetries,
		delay:       constants.RetryBackoff,
		maxDelay:    constants.MaxRetryBackoff,
		repeats:     constants.MaxPageRepeats,
		sink:        report.Discard,
	}
}

// Option configures a Runner.
type Option func(*options) error

// WithConcurrency sets how many pages are extracted at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("concurrency", n, "must be at least 1")
		}
		o.concurrency = n
		return nil
	}
}

// WithRetry sets the attempts per model call and the base backoff.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(o *options) error {
		if attempts < 1 {
			return errors.NewValidationError("attempts", attempts, "must be at least 1")
		}
		o.attempts = attempts
		o.delay = delay
		return nil
	}
}

// WithRepeats sets how many continuation requests a page may trigger.
func WithRepeats(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.NewValidationError("repeats", n, "cannot be negative")
		}
		o.repeats = n
		return nil
	}
}

// WithSink sets where failed pages are reported.
func WithSink(sink report.Sink) Option {
	return func(o *options) error {
		if sink == nil {
			return errors.NewValidationError("sink", nil, "cannot be nil")
		}
		o.sink = sink
		return nil
	}
}

// Runner extracts every page of a document.
type Runner struct {
	extractor Extractor
	opts      *options
}

// NewRunner creates a Runner.
func NewRunner(e Extractor, opts ...Option) (*Runner, error) {
	if e == nil {
		return nil, errors.NewValidationError("extractor", nil, "cannot be nil")
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return &Runner{extractor: e, opts: o}, nil
}

// Result holds the responses of one document.
type Result struct {
	// Pages holds the responses for each page in page order. A page that
	// failed outright has no responses.
	Pages [][]json.RawMessage

	// Errors holds one error per failed model call sequence.
	Errors []error
}

// Records returns every response in page order. A page without responses
// contributes a single nil entry so the fold reports it as skipped.
// Continuations follow their page as separate records, so record i is PDF
// page i+1 only when no page was continued; RecordPages maps them back.
func (r *Result) Records() []json.RawMessage {
	var out []json.RawMessage
	for _, responses := range r.Pages {
		if len(responses) == 0 {
			out = append(out, nil)
			continue
		}
		out = append(out, responses...)
	}
	return out
}

// RecordPages returns the PDF page number of each entry of Records.
func (r *Result) RecordPages() []int {
	var out []int
	for i, responses := range r.Pages {
		n := max(len(responses), 1)
		for range n {
			out = append(out, i+1)
		}
	}
	return out
}

// Run extracts every page of doc. Individual page failures are reported
// and recorded in the result; only cancellation of ctx returns an error.
func (r *Runner) Run(ctx context.Context, doc *Document) (*Result, error) {
	logger := logging.FromContext(ctx)
	res := &Result{Pages: make([][]json.RawMessage, doc.Pages)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.concurrency)
	for i := 0; i < doc.Pages; i++ {
		page := Page{Document: doc.Name, Data: doc.Data, Number: i + 1, Total: doc.Pages}
		g.Go(func() error {
			responses, err := r.page(gctx, page)
			res.Pages[page.Number-1] = responses
			if err != nil {
				mu.Lock()
				res.Errors = append(res.Errors, err)
				mu.Unlock()
				r.opts.sink.Report(report.Issue{
					Severity: report.Error,
					Stage:    report.StageExtract,
					Page:     page.Number,
					Message:  "page extraction failed",
					Err:      err,
				})
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}

	logger.Info().
		Str("document", doc.Name).
		Int("pages", doc.Pages).
		Int("failed", len(res.Errors)).
		Msg("Extraction complete")
	return res, nil
}

// page asks for one page, following repeat requests. Responses gathered
// before a failure are kept.
func (r *Runner) page(ctx context.Context, p Page) ([]json.RawMessage, error) {
	ctx = logging.WithPage(ctx, p.Number)
	logger := logging.FromContext(ctx)
	var responses []json.RawMessage

	for repeat := 0; ; repeat++ {
		p.Previous = responses
		var out json.RawMessage
		attempts := 0
		err := retry.Do(
			func() error {
				attempts++
				var err error
				out, err = r.extractor.ExtractPage(ctx, p)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(r.opts.attempts),
			retry.Delay(r.opts.delay),
			retry.MaxDelay(r.opts.maxDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				return errors.IsRetryable(err) && ctx.Err() == nil
			}),
			retry.OnRetry(func(n uint, err error) {
				if errors.IsRateLimited(err) {
					logger.Warn().Uint("attempt", n+1).Msg("Rate limited; backing off")
					return
				}
				logger.Warn().Err(err).Uint("attempt", n+1).Msg("Retrying page extraction")
			}),
		)
		if err != nil {
			return responses, &errors.ExtractionError{Document: p.Document, Page: p.Number, Attempts: attempts, Err: err}
		}
		responses = append(responses, out)

		if !wantsRepeat(out) {
			break
		}
		if repeat >= r.opts.repeats {
			logger.Warn().Int("repeats", repeat).Msg("Repeat limit reached")
			break
		}
		logger.Debug().Int("repeat", repeat+1).Msg("Model asked to continue page")
	}
	return responses, nil
}

// wantsRepeat reports whether a response sets "repeat": true.
func wantsRepeat(raw json.RawMessage) bool {
	var flag struct {
		Repeat bool `json:"repeat"`
	}
	if err := json.Unmarshal(raw, &flag); err != nil {
		return false
	}
	return flag.Repeat
}
