// Package flatten provides the flatten command implementation.
package flatten

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/cmd/coursemap/cmd/merge"
	"github.com/agentstation/coursemap/internal/cmd/application"
	"github.com/agentstation/coursemap/internal/cmd/input"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/ingest"
	"github.com/agentstation/coursemap/pkg/report"
)

// Flags holds the flatten command flags.
type Flags struct {
	Out         string
	Issues      bool
	InputFormat string
}

// NewCommand creates the flatten command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "flatten FILE...",
		GroupID: "core",
		Short:   "Fold partial records and write one row per price",
		Args:    cobra.MinimumNArgs(1),
		Long: `Flatten folds partial records like merge, then writes one row per
location, course and price. A course without prices still gets a row.

Rows are written as CSV unless another format is requested.`,
		Example: `  coursemap flatten results.json                  # CSV to stdout
  coursemap flatten results.json --out school.csv # CSV file
  coursemap flatten results.json -o table         # Table on the terminal`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.Out, "out", "", "write CSV to this path instead of stdout")
	cmd.Flags().BoolVar(&flags.Issues, "issues", false, "print data-quality issues to stderr")
	cmd.Flags().StringVar(&flags.InputFormat, "input-format", "", "format of records read from stdin: json or yaml (default: detect)")

	return cmd
}

// Execute folds the records named in args and writes the flattened rows.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags, args []string) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}
	if format == "" {
		format = output.FormatCSV
	}
	if format == output.FormatMarkdown {
		return errors.NewValidationError("format", format, "markdown is only available for merge")
	}

	raws, err := input.Records(cmd.InOrStdin(), ingest.Format(flags.InputFormat), args)
	if err != nil {
		return err
	}

	collector := report.NewCollector()
	p, err := app.Pipeline(coursemap.WithSink(collector))
	if err != nil {
		return err
	}

	res := p.Fold(cmd.Context(), raws)
	logger := app.Logger()
	logger.Info().Msg(res.Summary())

	if flags.Out != "" {
		path, err := p.WriteCSVFile(flags.Out, res.School)
		if err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("Wrote rows")
	} else {
		rows := slices.Collect(p.Rows(res.School))
		if len(rows) == 0 {
			return errors.ErrNoRows
		}
		if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
	}

	if flags.Issues {
		return merge.PrintIssues(cmd, collector.Issues())
	}
	return nil
}
