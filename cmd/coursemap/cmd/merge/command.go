// Package merge provides the merge command implementation.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/coursemap"
	"github.com/agentstation/coursemap/internal/cmd/application"
	"github.com/agentstation/coursemap/internal/cmd/input"
	"github.com/agentstation/coursemap/internal/cmd/output"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/ingest"
	"github.com/agentstation/coursemap/pkg/report"
)

// Flags holds the merge command flags.
type Flags struct {
	Issues      bool
	InputFormat string
}

// NewCommand creates the merge command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge FILE...",
		GroupID: "core",
		Short:   "Fold partial records into one school",
		Args:    cobra.MinimumNArgs(1),
		Long: `Merge reads partial school records in page order and folds them into one
canonical school.

Each file may hold a single record, a list of records, or an extraction
envelope with the records under "raw_results". JSON or YAML is chosen by
file extension; "-" reads standard input.`,
		Example: `  coursemap merge page1.json page2.json           # Print the merged school
  coursemap merge results.json -o yaml            # Merged school as YAML
  coursemap merge results.json -o markdown        # Markdown summary
  cat pages.yaml | coursemap merge - --issues     # Show dropped fields`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.Issues, "issues", false, "print data-quality issues to stderr")
	cmd.Flags().StringVar(&flags.InputFormat, "input-format", "", "format of records read from stdin: json or yaml (default: detect)")

	return cmd
}

// Execute folds the records named in args and prints the merged school.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags, args []string) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return errors.WrapValidation("format", err)
	}
	format = output.DetectFormat(string(format))

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
	app.Logger().Info().Msg(res.Summary())

	if flags.Issues {
		if err := PrintIssues(cmd, collector.Issues()); err != nil {
			return err
		}
	}

	return output.NewFormatter(format).Format(cmd.OutOrStdout(), res.School)
}

// PrintIssues writes issues as a table to the command's stderr.
func PrintIssues(cmd *cobra.Command, issues []report.Issue) error {
	if len(issues) == 0 {
		cmd.PrintErrln("No issues.")
		return nil
	}
	return output.NewFormatter(output.FormatTable).Format(cmd.ErrOrStderr(), output.IssuesToTableData(issues))
}
