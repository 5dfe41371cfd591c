// Package coursemap reconciles per-page partial school records into one
// canonical school and flattens it into tabular rows.
//
//	p, _ := coursemap.New()
//	res := p.Fold(ctx, records)
//	_ = p.WriteCSV(os.Stdout, res.School)
package coursemap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/google/uuid"

	"github.com/agentstation/coursemap/pkg/export"
	"github.com/agentstation/coursemap/pkg/flatten"
	"github.com/agentstation/coursemap/pkg/ingest"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/coursemap/pkg/reconcile"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

// Pipeline runs decode, fold, flatten and export with one configuration.
// It holds no state between calls and is safe for concurrent use.
type Pipeline struct {
	config     *config
	sink       report.Sink
	reconciler reconcile.Reconciler
}

// Output is the document produced by an extraction run: every raw page
// response next to the folded school.
type Output struct {
	RawResults    []json.RawMessage `json:"raw_results" yaml:"raw_results"`
	MergedResults *school.School    `json:"merged_results" yaml:"merged_results"`
}

// New creates a Pipeline with the given options.
func New(opts ...Option) (*Pipeline, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	p := &Pipeline{config: c, sink: report.OrDiscard(c.sink)}
	if c.logger != nil {
		p.sink = report.Multi(c.sink, report.NewLogger(c.logger))
	}

	r, err := reconcile.New(
		reconcile.WithSink(p.sink),
		reconcile.WithIntensityKey(c.intensityKey),
		reconcile.WithRegistrationFeeInTotal(c.registrationFee),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reconciler: %w", err)
	}
	p.reconciler = r
	return p, nil
}

// Decode converts one raw partial record into a school.
func (p *Pipeline) Decode(raw any) (*school.School, error) {
	return p.decode(raw, p.sink)
}

func (p *Pipeline) decode(raw any, sink report.Sink) (*school.School, error) {
	d, err := ingest.New(ingest.WithSink(sink), ingest.WithSchemaLint(p.config.schemaLint))
	if err != nil {
		return nil, err
	}
	return d.Decode(raw)
}

// Fold decodes raw records and folds them in order. A record that cannot
// be decoded is reported and folded as a missing page.
func (p *Pipeline) Fold(ctx context.Context, raws []any) *reconcile.Result {
	ctx = logging.WithOperation(p.context(ctx), "fold")
	partials := make([]*school.School, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		sink := report.WithPage(p.sink, i+1)
		s, err := p.decode(raw, sink)
		if err != nil {
			sink.Report(report.Issue{
				Severity: report.Error,
				Stage:    report.StageIngest,
				Message:  "record not decoded",
				Err:      err,
			})
			continue
		}
		partials[i] = s
	}
	return p.reconciler.Fold(ctx, partials)
}

// FoldJSON parses raw JSON responses and folds them. Nil or unparseable
// entries count as missing pages.
func (p *Pipeline) FoldJSON(ctx context.Context, raws []json.RawMessage) *reconcile.Result {
	docs := make([]any, len(raws))
	for i, raw := range raws {
		if len(raw) == 0 {
			continue
		}
		doc, err := ingest.Parse(raw, ingest.FormatJSON)
		if err != nil {
			p.sink.Report(report.Issue{
				Severity: report.Error,
				Stage:    report.StageIngest,
				Page:     i + 1,
				Message:  "response is not valid JSON",
				Err:      err,
			})
			continue
		}
		docs[i] = doc
	}
	return p.Fold(ctx, docs)
}

// FoldFiles reads partial records from each file in order and folds them.
func (p *Pipeline) FoldFiles(ctx context.Context, paths ...string) (*reconcile.Result, error) {
	var raws []any
	for _, path := range paths {
		recs, err := ingest.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raws = append(raws, recs...)
	}
	return p.Fold(ctx, raws), nil
}

// Rows flattens s.
func (p *Pipeline) Rows(s *school.School) iter.Seq[flatten.Row] {
	return flatten.Rows(s, flatten.WithSink(p.sink))
}

// WriteCSV writes the rows of s as CSV.
func (p *Pipeline) WriteCSV(w io.Writer, s *school.School) error {
	return export.WriteCSV(w, p.Rows(s))
}

// WriteCSVFile writes the rows of s to a CSV file and returns its path.
func (p *Pipeline) WriteCSVFile(path string, s *school.School) (string, error) {
	out, err := export.WriteCSVFile(path, p.Rows(s))
	if err != nil {
		return "", err
	}
	logging.Default().Debug().Str("path", out).Msg("Wrote CSV")
	return out, nil
}

// context attaches the configured logger and a run id.
func (p *Pipeline) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.config.logger != nil && logging.FromContext(ctx) == logging.Default() {
		ctx = logging.WithLogger(ctx, p.config.logger)
	}
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, uuid.NewString())
	}
	return ctx
}
