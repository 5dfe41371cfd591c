// Package flatten turns a canonical school into flat rows, one per
// (location, course, price). A course without prices yields one row with
// empty price fields; a location without courses yields none.
//
// Location-level fields (accommodations, fees, terms) are formatted once
// per location and repeated on each of its rows. A formatter that fails
// leaves a sentinel string in its field and the row is still emitted.
package flatten

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/money"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

type options struct {
	sink report.Sink
}

// Option configures flattening.
type Option func(*options)

// WithSink sets where formatting failures and a missing school name are
// reported. A nil sink discards them.
func WithSink(sink report.Sink) Option {
	return func(o *options) {
		o.sink = report.OrDiscard(sink)
	}
}

func newOptions(opts ...Option) *options {
	o := &options{sink: report.Discard}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Rows returns the rows of s as a lazy sequence. The school is copied when
// Rows is called, so ranging over the sequence again yields identical rows
// even if s is changed in between.
func Rows(s *school.School, opts ...Option) iter.Seq[Row] {
	o := newOptions(opts...)
	snap := s.Clone()
	return func(yield func(Row) bool) {
		if snap == nil {
			return
		}
		if snap.Name == "" {
			o.sink.Report(report.Issue{
				Severity: report.Warning,
				Stage:    report.StageFlatten,
				Path:     "name",
				Message:  "school has no name",
			})
		}
		for i, loc := range snap.Locations {
			if !location(o.sink, snap, i, loc, yield) {
				return
			}
		}
	}
}

// Collect returns all rows of s.
func Collect(s *school.School, opts ...Option) []Row {
	var out []Row
	for r := range Rows(s, opts...) {
		out = append(out, r)
	}
	return out
}

// location emits the rows of one location. It reports false when the
// consumer stopped early.
func location(sink report.Sink, s *school.School, i int, loc school.Location, yield func(Row) bool) bool {
	if len(loc.Courses) == 0 {
		return true
	}
	path := report.Index("locations", i)
	base := Row{
		SchoolName: s.Name,
		City:       loc.City,
		Country:    loc.Country,
		Address:    loc.Address,
		Accommodations: safe(sink, report.Field(path, "accommodations"), constants.ErrorFormattingAccommodations, func() string {
			return formatAccommodations(loc.Accommodations)
		}),
		AdditionalFees: safe(sink, report.Field(path, "additional_fees"), constants.ErrorFormattingFees, func() string {
			return formatFees(loc.AdditionalFees)
		}),
		Terms: safe(sink, "terms", constants.ErrorFormattingTerms, func() string {
			return formatPairs(s.Terms)
		}),
	}

	for _, c := range loc.Courses {
		row := base
		row.CourseName = c.Name
		row.CourseType = c.CourseType
		row.AgeRange = ageRange(c)
		row.LessonsPerWeek = c.LessonsPerWeek
		row.Description = c.Description
		row.Requirements = c.Requirements
		row.TotalFee = totalFee(c)

		if len(c.Prices) == 0 {
			if !yield(row) {
				return false
			}
			continue
		}
		for _, p := range c.Prices {
			pr := row
			pr.Duration = p.Duration
			pr.Price = p.Price
			pr.PriceValue = priceValue(p)
			pr.Currency = p.Currency
			if pr.Currency == "" {
				pr.Currency = money.InferCurrency(p.Price)
			}
			if !yield(pr) {
				return false
			}
		}
	}
	return true
}

// safe runs format and substitutes sentinel if it panics.
func safe(sink report.Sink, path, sentinel string, format func() string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			sink.Report(report.Issue{
				Severity: report.Error,
				Stage:    report.StageFlatten,
				Path:     path,
				Message:  "formatting failed",
				Err:      fmt.Errorf("%v", rec),
			})
			out = sentinel
		}
	}()
	return format()
}

// priceValue is the price's total, else the number parsed from its text.
func priceValue(p school.Price) string {
	if p.TotalPrice != nil {
		return p.TotalPrice.String()
	}
	if v, ok := money.Parse(p.Price); ok {
		return formatFloat(v)
	}
	return ""
}

// totalFee is the course total, else the first price's value.
func totalFee(c school.Course) string {
	if c.TotalFee != nil {
		return c.TotalFee.String()
	}
	if len(c.Prices) == 0 {
		return ""
	}
	return priceValue(c.Prices[0])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
