// Package input reads partial records named on the command line.
package input

import (
	"io"

	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/ingest"
)

// Stdin is the argument that reads records from standard input.
const Stdin = "-"

// Records reads every partial record from paths in order. Stdin records
// are parsed as format; ingest.FormatAuto sniffs JSON or YAML.
func Records(stdin io.Reader, format ingest.Format, paths []string) ([]any, error) {
	if len(paths) == 0 {
		return nil, errors.NewValidationError("files", nil, "at least one file is required")
	}
	var raws []any
	for _, path := range paths {
		var (
			recs []any
			err  error
		)
		if path == Stdin {
			recs, err = ingest.Read(stdin, format)
		} else {
			recs, err = ingest.ReadFile(path)
		}
		if err != nil {
			return nil, err
		}
		raws = append(raws, recs...)
	}
	return raws, nil
}
