// Package ingest is the boundary between loosely typed partial records and
// the typed school entities. Everything past Decode is a school.School;
// nothing untyped crosses it.
//
// A partial record may be missing any field, may carry fees and
// supplements either as a name→text mapping or as a list of
// {name, price, currency} records, and may contain malformed sub-entities.
// Malformed pieces are reported through the configured sink and dropped.
// Only a record that is not a mapping at all is rejected with an error.
package ingest

import (
	"fmt"
	"strings"

	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/money"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

// Decoder converts partial records into typed schools.
type Decoder struct {
	options *options
}

// New creates a Decoder.
func New(opts ...Option) (*Decoder, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.lint {
		if _, err := partialSchema(); err != nil {
			return nil, err
		}
	}
	return &Decoder{options: o}, nil
}

// Decode converts one partial record. It returns a *errors.ValidationError
// wrapping errors.ErrNotMapping when raw is not a mapping.
func Decode(raw any, sink report.Sink) (*school.School, error) {
	d := &Decoder{options: &options{sink: report.OrDiscard(sink)}}
	return d.Decode(raw)
}

// Decode converts one partial record.
func (d *Decoder) Decode(raw any) (*school.School, error) {
	m, ok := mapping(raw)
	if !ok {
		return nil, &errors.ValidationError{
			Field:   "record",
			Value:   fmt.Sprintf("%T", raw),
			Message: "top level must be a mapping",
			Err:     errors.ErrNotMapping,
		}
	}
	if d.options.lint {
		d.lint(raw)
	}
	w := walker{sink: d.options.sink}
	return w.school(m), nil
}

// walker carries the sink through one decode.
type walker struct {
	sink report.Sink
}

func (w walker) warn(path, format string, args ...any) {
	w.sink.Report(report.Issue{
		Severity: report.Warning,
		Stage:    report.StageIngest,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// str reads a scalar field, reporting and ignoring non-scalar values.
func (w walker) str(m []entry, path string, keys ...string) string {
	v, ok := lookup(m, keys...)
	if !ok {
		return ""
	}
	s, ok := text(v)
	if !ok {
		w.warn(report.Field(path, keys[0]), "expected text, got %T; field ignored", v)
		return ""
	}
	return s
}

// amount reads an optional numeric field.
func (w walker) amount(m []entry, path, key string) *school.Amount {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	if s, isText := v.(string); isText {
		if f, ok := money.Parse(s); ok {
			return school.Explicit(f)
		}
	} else if f, ok := number(v); ok {
		return school.Explicit(f)
	}
	w.warn(report.Field(path, key), "not a number: %v; field ignored", v)
	return nil
}

// items reads an optional list field, reporting a non-list value.
func (w walker) items(m []entry, path, key string) []any {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	l, ok := list(v)
	if !ok {
		w.warn(report.Field(path, key), "expected a list, got %T; field ignored", v)
		return nil
	}
	return l
}

func (w walker) school(m []entry) *school.School {
	s := &school.School{
		Name:  w.str(m, "", "name", "school_name"),
		Terms: w.pairs(m, "", "terms"),
	}
	for i, raw := range w.items(m, "", "locations") {
		path := report.Index("locations", i)
		lm, ok := mapping(raw)
		if !ok {
			w.warn(path, "expected a mapping, got %T; location dropped", raw)
			continue
		}
		loc := w.location(lm, path)
		if !loc.Key().Valid() {
			w.warn(path, "location %q/%q lacks city or country; location dropped", loc.City, loc.Country)
			continue
		}
		if s.Name == "" {
			s.Name = w.str(lm, path, "school_name")
		}
		s.Locations = append(s.Locations, loc)
	}
	return s
}

func (w walker) location(m []entry, path string) school.Location {
	loc := school.Location{
		City:           w.str(m, path, "city"),
		Country:        w.str(m, path, "country"),
		Address:        w.str(m, path, "address"),
		AdditionalFees: w.fees(m, path, "additional_fees"),
	}
	for i, raw := range w.items(m, path, "courses") {
		p := report.Index(report.Field(path, "courses"), i)
		cm, ok := mapping(raw)
		if !ok {
			w.warn(p, "expected a mapping, got %T; course dropped", raw)
			continue
		}
		if c, ok := w.course(cm, p); ok {
			loc.Courses = append(loc.Courses, c)
		}
	}
	for i, raw := range w.items(m, path, "accommodations") {
		p := report.Index(report.Field(path, "accommodations"), i)
		am, ok := mapping(raw)
		if !ok {
			w.warn(p, "expected a mapping, got %T; accommodation dropped", raw)
			continue
		}
		if a, ok := w.accommodation(am, p); ok {
			loc.Accommodations = append(loc.Accommodations, a)
		}
	}
	return loc
}

func (w walker) course(m []entry, path string) (school.Course, bool) {
	c := school.Course{
		Name:           w.str(m, path, "name"),
		LessonsPerWeek: w.str(m, path, "lessons_per_week"),
		Description:    w.str(m, path, "description"),
		Requirements:   w.str(m, path, "requirements"),
		CourseType:     w.str(m, path, "course_type"),
		AgeRange:       w.str(m, path, "age_range", "age_range_display"),
		MinAge:         w.str(m, path, "min_age"),
		MaxAge:         w.str(m, path, "max_age"),
		TotalFee:       w.amount(m, path, "total_fee"),
	}
	if c.Name == "" {
		w.warn(path, "course has no name; course dropped")
		return c, false
	}
	for i, raw := range w.items(m, path, "prices") {
		p := report.Index(report.Field(path, "prices"), i)
		pm, ok := mapping(raw)
		if !ok {
			w.warn(p, "expected a mapping, got %T; price dropped", raw)
			continue
		}
		if pr, ok := w.price(pm, p); ok {
			c.Prices = append(c.Prices, pr)
		}
	}
	return c, true
}

func (w walker) price(m []entry, path string) (school.Price, bool) {
	p := school.Price{
		Duration:   w.str(m, path, "duration"),
		Price:      w.str(m, path, "price"),
		Currency:   money.Normalize(w.str(m, path, "currency")),
		TotalPrice: w.amount(m, path, "total_price"),
	}
	if p.Duration == "" {
		w.warn(path, "price has no duration; price dropped")
		return p, false
	}
	return p, true
}

func (w walker) accommodation(m []entry, path string) (school.Accommodation, bool) {
	a := school.Accommodation{
		Type:         w.str(m, path, "type"),
		PricePerWeek: w.str(m, path, "price_per_week"),
		Currency:     money.Normalize(w.str(m, path, "currency")),
		Description:  w.str(m, path, "description"),
		Supplements:  w.pairs(m, path, "supplements"),
	}
	if a.Type == "" {
		w.warn(path, "accommodation has no type; accommodation dropped")
		return a, false
	}
	return a, true
}

// feeName converts a mapping key such as "Course Materials" to the
// list-form name "course_materials".
func feeName(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
