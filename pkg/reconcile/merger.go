package reconcile

import (
	"fmt"
	"strings"

	"github.com/agentstation/coursemap/pkg/money"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

// Merger merges an incoming partial entity into an existing one of the
// same kind. Every method returns a new value and leaves both inputs
// untouched.
//
// The policy is the same at every level of the tree:
//   - scalars: the incoming value wins when it is non-empty
//   - keyed collections: unseen keys are appended, seen keys merge recursively
//   - terms and supplements: incoming entries overwrite by name
//   - derived amounts are recomputed, explicit amounts are never replaced
//   - sub-entities lacking their key are reported and skipped
type Merger interface {
	School(existing, incoming school.School) school.School
	Location(existing, incoming school.Location) school.Location
	Course(existing, incoming school.Course) school.Course
	Price(existing, incoming school.Price) school.Price
	Accommodation(existing, incoming school.Accommodation) school.Accommodation
	Fee(existing, incoming school.Fee) school.Fee
}

// merger is the default Merger.
type merger struct {
	sink            report.Sink
	intensityKey    bool
	registrationFee bool
}

// NewMerger creates a Merger.
func NewMerger(opts ...Option) (Merger, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return newMerger(o), nil
}

func newMerger(o *options) *merger {
	return &merger{
		sink:            report.OrDiscard(o.sink),
		intensityKey:    o.intensityKey,
		registrationFee: o.registrationFee,
	}
}

func (m *merger) skip(path, format string, args ...any) {
	m.sink.Report(report.Issue{
		Severity: report.Warning,
		Stage:    report.StageMerge,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// School merges two schools.
func (m *merger) School(existing, incoming school.School) school.School {
	out := *existing.Clone()
	out.Name = pick(out.Name, incoming.Name)
	out.Terms = overwrite(out.Terms, incoming.Terms)

	for i, loc := range incoming.Locations {
		path := report.Index("locations", i)
		key := loc.Key()
		if !key.Valid() {
			m.skip(path, "location %q/%q lacks city or country; skipped", loc.City, loc.Country)
			continue
		}
		if idx := school.IndexOfLocation(out.Locations, key); idx >= 0 {
			out.Locations[idx] = m.location(out.Locations[idx], loc, path)
			continue
		}
		out.Locations = append(out.Locations, m.location(school.Location{City: loc.City, Country: loc.Country}, loc, path))
	}
	return out
}

// Location merges two locations sharing a key.
func (m *merger) Location(existing, incoming school.Location) school.Location {
	return m.location(existing, incoming, "")
}

func (m *merger) location(existing, incoming school.Location, path string) school.Location {
	out := school.DeepCopyLocation(existing)
	// City and country are the identity; the first spelling seen is kept.
	out.City = keep(out.City, incoming.City)
	out.Country = keep(out.Country, incoming.Country)
	out.Address = pick(out.Address, incoming.Address)

	for i, c := range incoming.Courses {
		p := report.Index(report.Field(path, "courses"), i)
		if strings.TrimSpace(c.Name) == "" {
			m.skip(p, "course has no name; skipped")
			continue
		}
		if idx := m.indexOfCourse(out.Courses, c); idx >= 0 {
			out.Courses[idx] = m.course(out.Courses[idx], c, p)
			continue
		}
		out.Courses = append(out.Courses, m.course(school.Course{Name: c.Name}, c, p))
	}

	for i, a := range incoming.Accommodations {
		p := report.Index(report.Field(path, "accommodations"), i)
		if a.Type == "" {
			m.skip(p, "accommodation has no type; skipped")
			continue
		}
		if idx := school.IndexOfAccommodation(out.Accommodations, a.Key()); idx >= 0 {
			out.Accommodations[idx] = m.Accommodation(out.Accommodations[idx], a)
			continue
		}
		out.Accommodations = append(out.Accommodations, m.Accommodation(school.Accommodation{Type: a.Type}, a))
	}

	for i, f := range incoming.AdditionalFees {
		if f.Name == "" {
			m.skip(report.Index(report.Field(path, "additional_fees"), i), "fee has no name; skipped")
			continue
		}
		if idx := school.IndexOfFee(out.AdditionalFees, f.Key()); idx >= 0 {
			out.AdditionalFees[idx] = m.Fee(out.AdditionalFees[idx], f)
			continue
		}
		out.AdditionalFees = append(out.AdditionalFees, m.Fee(school.Fee{Name: f.Name}, f))
	}

	var extra float64
	if m.registrationFee {
		extra = registrationFee(out.AdditionalFees)
	}
	for i := range out.Courses {
		deriveTotalFee(&out.Courses[i], extra)
	}
	return out
}

// indexOfCourse finds the course matching c under the configured key.
func (m *merger) indexOfCourse(courses []school.Course, c school.Course) int {
	if !m.intensityKey {
		for i := range courses {
			if courses[i].Key(false) == c.Key(false) {
				return i
			}
		}
		return -1
	}
	for i := range courses {
		if courses[i].Key(true) == c.Key(true) {
			return i
		}
	}
	for i := range courses {
		if courses[i].Name == c.Name && (courses[i].LessonsPerWeek == "" || c.LessonsPerWeek == "") {
			return i
		}
	}
	return -1
}

// Course merges two courses sharing a key.
func (m *merger) Course(existing, incoming school.Course) school.Course {
	out := m.course(existing, incoming, "")
	deriveTotalFee(&out, 0)
	return out
}

func (m *merger) course(existing, incoming school.Course, path string) school.Course {
	out := school.DeepCopyCourse(existing)
	out.Name = keep(out.Name, incoming.Name)
	out.LessonsPerWeek = pick(out.LessonsPerWeek, incoming.LessonsPerWeek)
	out.Description = pick(out.Description, incoming.Description)
	out.Requirements = pick(out.Requirements, incoming.Requirements)
	out.CourseType = pick(out.CourseType, incoming.CourseType)
	out.AgeRange = pick(out.AgeRange, incoming.AgeRange)
	out.MinAge = pick(out.MinAge, incoming.MinAge)
	out.MaxAge = pick(out.MaxAge, incoming.MaxAge)
	out.TotalFee = explicit(out.TotalFee, incoming.TotalFee)

	for i, p := range incoming.Prices {
		pp := report.Index(report.Field(path, "prices"), i)
		if p.Duration == "" {
			m.skip(pp, "price has no duration; skipped")
			continue
		}
		if idx := school.IndexOfPrice(out.Prices, p.Key()); idx >= 0 {
			out.Prices[idx] = m.price(out.Prices[idx], p, pp)
			continue
		}
		out.Prices = append(out.Prices, m.price(school.Price{Duration: p.Duration}, p, pp))
	}
	return out
}

// Price merges two prices sharing a duration.
func (m *merger) Price(existing, incoming school.Price) school.Price {
	return m.price(existing, incoming, "")
}

func (m *merger) price(existing, incoming school.Price, path string) school.Price {
	out := school.DeepCopyPrice(existing)
	out.Duration = keep(out.Duration, incoming.Duration)
	out.Price = pick(out.Price, incoming.Price)
	if out.CurrencyInferred {
		out.Currency, out.CurrencyInferred = "", false
	}
	if !incoming.CurrencyInferred {
		out.Currency = pick(out.Currency, incoming.Currency)
	}
	out.TotalPrice = explicit(out.TotalPrice, incoming.TotalPrice)

	if out.Currency == "" {
		out.Currency = money.InferCurrency(out.Price)
		out.CurrencyInferred = out.Currency != ""
	}
	if out.TotalPrice == nil && out.Price != "" {
		if v, ok := money.Parse(out.Price); ok {
			out.TotalPrice = school.Derived(v)
		} else {
			m.sink.Report(report.Issue{
				Severity: report.Info,
				Stage:    report.StageMerge,
				Path:     report.Field(path, "price"),
				Message:  fmt.Sprintf("price %q is not numeric; total left unset", out.Price),
			})
		}
	}
	return out
}

// Accommodation merges two accommodations sharing a type.
func (m *merger) Accommodation(existing, incoming school.Accommodation) school.Accommodation {
	out := school.DeepCopyAccommodation(existing)
	out.Type = keep(out.Type, incoming.Type)
	out.PricePerWeek = pick(out.PricePerWeek, incoming.PricePerWeek)
	out.Currency = pick(out.Currency, incoming.Currency)
	out.Description = pick(out.Description, incoming.Description)
	out.Supplements = overwrite(out.Supplements, incoming.Supplements)
	return out
}

// Fee merges two fees sharing a name.
func (m *merger) Fee(existing, incoming school.Fee) school.Fee {
	return school.Fee{
		Name:     keep(existing.Name, incoming.Name),
		Price:    pick(existing.Price, incoming.Price),
		Currency: pick(existing.Currency, incoming.Currency),
	}
}

// pick is last-non-empty-wins.
func pick(existing, incoming string) string {
	if strings.TrimSpace(incoming) != "" {
		return incoming
	}
	return existing
}

// keep is first-non-empty-wins, used for identity fields.
func keep(existing, incoming string) string {
	if existing != "" {
		return existing
	}
	return incoming
}

// overwrite applies incoming entries over existing by name. Blank incoming
// values only fill names not yet present.
func overwrite(existing, incoming school.Pairs) school.Pairs {
	out := existing.Clone()
	for _, e := range incoming {
		if _, seen := out.Get(e.Name); seen && strings.TrimSpace(e.Value) == "" {
			continue
		}
		out = out.Set(e.Name, e.Value)
	}
	return out
}

// explicit keeps whichever side holds an extracted amount, incoming first.
// Derived amounts are dropped so they are recomputed from merged data.
func explicit(existing, incoming *school.Amount) *school.Amount {
	switch {
	case incoming != nil && !incoming.Derived:
		v := *incoming
		return &v
	case existing != nil && !existing.Derived:
		return existing
	}
	return nil
}

// deriveTotalFee sets a course total from its first price when no
// explicit total exists.
func deriveTotalFee(c *school.Course, extra float64) {
	if c.TotalFee != nil && !c.TotalFee.Derived {
		return
	}
	c.TotalFee = nil
	if len(c.Prices) == 0 || c.Prices[0].TotalPrice == nil {
		return
	}
	c.TotalFee = school.Derived(c.Prices[0].TotalPrice.Value + extra)
}

// registrationFee returns the numeric registration fee among fees, or 0.
func registrationFee(fees []school.Fee) float64 {
	for _, f := range fees {
		switch strings.ToLower(strings.TrimSpace(f.Name)) {
		case "registration", "registration_fee", "registration fee":
			if v, ok := money.Parse(f.Price); ok {
				return v
			}
		}
	}
	return 0
}
