// Package extract provides the extract command implementation.
package extract

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/merge"
	"github.com/agentstation/coursemap/internal/cmd/application"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/internal/extract"
	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/agentstation/coursemap/pkg/report"
)

// Flags holds the extract command flags.
type Flags struct {
	Out         string
	CSV         string
	Concurrency int
	Repeats     int
	Issues      bool
}

// NewCommand creates the extract command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "extract PDF",
		GroupID: "core",
		Short:   "Extract a brochure page by page and merge the results",
		Args:    cobra.ExactArgs(1),
		Long: `Extract sends each page of a PDF brochure to Gemini, follows the model's
requests to continue a page, and folds every response into one school.

The output holds the raw page responses and the merged school:

  {"raw_results": [...], "merged_results": {...}}

Pages that still fail after retries are skipped. Requires GEMINI_API_KEY
or GOOGLE_API_KEY.`,
		Example: `  coursemap extract brochure.pdf                          # JSON to stdout
  coursemap extract brochure.pdf --out result.json        # JSON file
  coursemap extract brochure.pdf --csv school.csv         # Also write rows
  coursemap extract brochure.pdf --concurrency 2 --issues`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := extract.LoadDocument(args[0])
			if err != nil {
				return err
			}
			return Execute(cmd, app, flags, doc)
		},
	}

	cmd.Flags().StringVar(&flags.Out, "out", "", "write the result to this path instead of stdout")
	cmd.Flags().StringVar(&flags.CSV, "csv", "", "also write the flattened rows to this CSV path")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 0, "pages extracted at once (default from config)")
	cmd.Flags().IntVar(&flags.Repeats, "repeats", -1, "continuations allowed per page (default from config)")
	cmd.Flags().BoolVar(&flags.Issues, "issues", false, "print data-quality issues to stderr")

	return cmd
}

// Execute extracts doc, folds the page responses and writes the result.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags, doc *extract.Document) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}
	switch format {
	case "", output.FormatJSON, output.FormatYAML:
	default:
		return errors.NewValidationError("format", format, "extract writes json or yaml")
	}
	if format == "" {
		format = output.FormatJSON
	}

	logger := app.Logger()
	ctx := logging.WithDocument(logging.WithLogger(cmd.Context(), logger), doc.Name)

	e, err := app.Extractor(ctx)
	if err != nil {
		return err
	}
	if e == nil {
		return &errors.ConfigError{Component: "extractor", Message: "no extractor configured"}
	}

	collector := report.NewCollector()
	opts := append(app.ExtractOptions(), extract.WithSink(collector))
	if flags.Concurrency > 0 {
		opts = append(opts, extract.WithConcurrency(flags.Concurrency))
	}
	if flags.Repeats >= 0 {
		opts = append(opts, extract.WithRepeats(flags.Repeats))
	}
	runner, err := extract.NewRunner(e, opts...)
	if err != nil {
		return err
	}

	logger.Info().Str("document", doc.Name).Int("pages", doc.Pages).Msg("Extracting")
	extracted, err := runner.Run(ctx, doc)
	if err != nil {
		return err
	}

	p, err := app.Pipeline(coursemap.WithSink(collector))
	if err != nil {
		return err
	}
	records := extracted.Records()
	res := p.FoldJSON(ctx, records)
	logger.Info().Msg(res.Summary())

	result := coursemap.Output{RawResults: records, MergedResults: res.School}
	if err := write(cmd.OutOrStdout(), flags.Out, output.NewFormatter(format), result); err != nil {
		return err
	}

	if flags.CSV != "" {
		path, err := p.WriteCSVFile(flags.CSV, res.School)
		if err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("Wrote rows")
	}

	if flags.Issues {
		return merge.PrintIssues(cmd, pdfPages(collector.Issues(), extracted.RecordPages()))
	}
	return nil
}

// pdfPages renumbers fold issues from record positions to PDF pages.
// Extraction issues already carry the PDF page.
func pdfPages(issues []report.Issue, pages []int) []report.Issue {
	for i := range issues {
		n := issues[i].Page
		if issues[i].Stage == report.StageExtract || n < 1 || n > len(pages) {
			continue
		}
		issues[i].Page = pages[n-1]
	}
	return issues
}

// write formats data to path, or to stdout when path is empty.
func write(stdout io.Writer, path string, f output.Formatter, data any) error {
	if path == "" {
		return f.Format(stdout, data)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := f.Format(file, data); err != nil {
		_ = file.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, file.Close())
}
