// Package export serializes flattened rows as CSV and renders canonical
// schools as terminal tables or markdown.
package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/flatten"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ColumnName normalizes a row field name for a CSV header:
// "School Name" becomes "school_name".
func ColumnName(field string) string {
	return strings.ToLower(nonAlnum.ReplaceAllString(field, "_"))
}

// Header returns the normalized header for row.
func Header(row flatten.Row) []string {
	fields := row.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = ColumnName(f.Name)
	}
	return out
}

// WriteCSV writes rows as UTF-8 CSV with a header taken from the first
// row. It returns errors.ErrNoRows and writes nothing when rows is empty.
func WriteCSV(w io.Writer, rows iter.Seq[flatten.Row]) error {
	var cw *csv.Writer
	for row := range rows {
		if cw == nil {
			cw = csv.NewWriter(w)
			if err := cw.Write(Header(row)); err != nil {
				return errors.WrapIO("write", "csv header", err)
			}
		}
		if err := cw.Write(row.Values()); err != nil {
			return errors.WrapIO("write", "csv row", err)
		}
	}
	if cw == nil {
		return errors.ErrNoRows
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapIO("write", "csv", err)
	}
	return nil
}

// CSVString returns rows as CSV text.
func CSVString(rows iter.Seq[flatten.Row]) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSVFile writes rows to path, creating parent directories, and
// returns the path written. Nothing is created when rows is empty.
func WriteCSVFile(path string, rows iter.Seq[flatten.Row]) (string, error) {
	data, err := CSVString(rows)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return "", errors.WrapIO("create", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(data), constants.FilePermissions); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	return path, nil
}
