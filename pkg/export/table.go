package export

import (
	"io"
	"iter"

	"github.com/olekukonko/tablewriter"

	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/flatten"
)

// narrowColumns are the row fields shown in a default terminal table.
var narrowColumns = []string{
	flatten.ColCity,
	flatten.ColCountry,
	flatten.ColCourseName,
	flatten.ColLessonsPerWeek,
	flatten.ColDuration,
	flatten.ColPrice,
	flatten.ColCurrency,
	flatten.ColTotalFee,
}

// WriteTable renders rows as a terminal table. Wide tables show every
// column except the long location-level texts.
func WriteTable(w io.Writer, rows iter.Seq[flatten.Row], wide bool) error {
	cols := narrowColumns
	if wide {
		cols = wideColumns()
	}

	table := tablewriter.NewTable(w)
	headers := make([]any, len(cols))
	for i, c := range cols {
		headers[i] = c
	}
	table.Header(headers...)

	n := 0
	for row := range rows {
		values := make(map[string]string, len(cols))
		for _, f := range row.Fields() {
			values[f.Name] = f.Value
		}
		cells := make([]any, len(cols))
		for i, c := range cols {
			cells[i] = values[c]
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		return errors.ErrNoRows
	}
	return table.Render()
}

func wideColumns() []string {
	var out []string
	for _, c := range flatten.Columns() {
		switch c {
		case flatten.ColAccommodations, flatten.ColAdditionalFees, flatten.ColTerms, flatten.ColDescription:
			continue
		}
		out = append(out, c)
	}
	return out
}
