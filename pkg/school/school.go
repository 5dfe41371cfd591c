// Package school defines the canonical entity tree produced by folding
// per-page partial records: a School with its Locations, Courses, Prices,
// Accommodations and Fees.
//
// All entities are plain values. Collections are slices of values, so
// copying a School and calling Clone yields a fully independent tree.
package school

// School is the singleton root entity for one document.
type School struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Locations []Location `json:"locations,omitempty" yaml:"locations,omitempty"`
	Terms     Pairs      `json:"terms,omitempty" yaml:"terms,omitempty"`
}

// Location is one campus of a school, identified by city and country.
type Location struct {
	City           string          `json:"city" yaml:"city"`
	Country        string          `json:"country" yaml:"country"`
	Address        string          `json:"address,omitempty" yaml:"address,omitempty"`
	Courses        []Course        `json:"courses,omitempty" yaml:"courses,omitempty"`
	Accommodations []Accommodation `json:"accommodations,omitempty" yaml:"accommodations,omitempty"`
	AdditionalFees []Fee           `json:"additional_fees,omitempty" yaml:"additional_fees,omitempty"`
}

// Course is a course offered at a location.
type Course struct {
	Name           string  `json:"name" yaml:"name"`
	LessonsPerWeek string  `json:"lessons_per_week,omitempty" yaml:"lessons_per_week,omitempty"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	Requirements   string  `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	CourseType     string  `json:"course_type,omitempty" yaml:"course_type,omitempty"`
	AgeRange       string  `json:"age_range,omitempty" yaml:"age_range,omitempty"`
	MinAge         string  `json:"min_age,omitempty" yaml:"min_age,omitempty"`
	MaxAge         string  `json:"max_age,omitempty" yaml:"max_age,omitempty"`
	Prices         []Price `json:"prices,omitempty" yaml:"prices,omitempty"`
	TotalFee       *Amount `json:"total_fee,omitempty" yaml:"total_fee,omitempty"`
}

// Price is the cost of a course for one duration.
//
// CurrencyInferred is not serialized; it records that Currency was read
// from the symbol in Price rather than extracted, so the merger infers it
// again whenever the price text changes.
type Price struct {
	Duration         string  `json:"duration" yaml:"duration"`
	Price            string  `json:"price,omitempty" yaml:"price,omitempty"`
	Currency         string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	TotalPrice       *Amount `json:"total_price,omitempty" yaml:"total_price,omitempty"`
	CurrencyInferred bool    `json:"-" yaml:"-"`
}

// Accommodation is a lodging option at a location.
type Accommodation struct {
	Type         string `json:"type" yaml:"type"`
	PricePerWeek string `json:"price_per_week,omitempty" yaml:"price_per_week,omitempty"`
	Currency     string `json:"currency,omitempty" yaml:"currency,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Supplements  Pairs  `json:"supplements,omitempty" yaml:"supplements,omitempty"`
}

// Fee is an additional charge at a location, such as registration.
type Fee struct {
	Name     string `json:"name" yaml:"name"`
	Price    string `json:"price,omitempty" yaml:"price,omitempty"`
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// IsEmpty reports whether s is still the empty fold accumulator.
func (s *School) IsEmpty() bool {
	return s == nil || (s.Name == "" && len(s.Locations) == 0 && len(s.Terms) == 0)
}

// Counts returns the number of locations, courses and prices in s.
func (s *School) Counts() (locations, courses, prices int) {
	if s == nil {
		return 0, 0, 0
	}
	locations = len(s.Locations)
	for _, loc := range s.Locations {
		courses += len(loc.Courses)
		for _, c := range loc.Courses {
			prices += len(c.Prices)
		}
	}
	return locations, courses, prices
}
