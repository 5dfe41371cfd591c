package flatten_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap/pkg/flatten"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

func sample() *school.School {
	return &school.School{
		Name: "Centre of English Studies",
		Locations: []school.Location{
			{
				City: "Dublin", Country: "IE", Address: "31 Dame Street",
				Courses: []school.Course{
					{
						Name: "General English", CourseType: "Group", MinAge: "16",
						LessonsPerWeek: "20",
						Prices: []school.Price{
							{Duration: "2 weeks", Price: "€300", Currency: "EUR", TotalPrice: school.Derived(300)},
							{Duration: "4 weeks", Price: "€550"},
						},
					},
					{Name: "Private Lessons", AgeRange: "18+"},
				},
				Accommodations: []school.Accommodation{
					{Type: "Homestay", PricePerWeek: "250", Currency: "EUR", Supplements: school.Pairs{{Name: "Summer", Value: "€30"}}},
					{Description: "Shared flat"},
				},
				AdditionalFees: []school.Fee{
					{Name: "registration", Price: "85", Currency: "EUR"},
					{Name: "course_materials", Price: "45"},
				},
			},
			{City: "Cork", Country: "IE"},
		},
		Terms: school.Pairs{{Name: "Refunds", Value: "none"}, {Name: "Payment", Value: "in advance"}},
	}
}

func TestRows(t *testing.T) {
	rows := flatten.Collect(sample())
	require.Len(t, rows, 3)

	want := flatten.Row{
		SchoolName:     "Centre of English Studies",
		City:           "Dublin",
		Country:        "IE",
		Address:        "31 Dame Street",
		CourseName:     "General English",
		CourseType:     "Group",
		AgeRange:       "16-",
		LessonsPerWeek: "20",
		Duration:       "2 weeks",
		Price:          "€300",
		PriceValue:     "300",
		Currency:       "EUR",
		TotalFee:       "300",
		Accommodations: "Type: Homestay, Price/week: 250 EUR, Supplements: Summer: €30 | Type: N/A, Description: Shared flat",
		AdditionalFees: "registration: 85 EUR; course_materials: 45",
		Terms:          "Refunds: none; Payment: in advance",
	}
	if diff := cmp.Diff(want, rows[0]); diff != "" {
		t.Errorf("first row mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "4 weeks", rows[1].Duration)
	assert.Equal(t, "550", rows[1].PriceValue)
	assert.Equal(t, "EUR", rows[1].Currency, "currency inferred from symbol")
	assert.Equal(t, "300", rows[1].TotalFee, "total fee falls back to first price")

	// A course without prices still gets a row with empty price fields.
	assert.Equal(t, "Private Lessons", rows[2].CourseName)
	assert.Equal(t, "18+", rows[2].AgeRange)
	assert.Empty(t, rows[2].Duration)
	assert.Empty(t, rows[2].Price)
	assert.Empty(t, rows[2].PriceValue)
	assert.Empty(t, rows[2].TotalFee)
	assert.Equal(t, rows[0].Accommodations, rows[2].Accommodations)
}

func TestRowCount(t *testing.T) {
	tests := []struct {
		name   string
		prices []int
		want   int
	}{
		{"no courses", nil, 0},
		{"one course without prices", []int{0}, 1},
		{"mixed", []int{3, 0, 1}, 5},
		{"many prices", []int{4, 2}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := school.Location{City: "Dublin", Country: "IE"}
			for i, n := range tt.prices {
				c := school.Course{Name: "Course " + string(rune('A'+i))}
				for j := 0; j < n; j++ {
					c.Prices = append(c.Prices, school.Price{Duration: strings.Repeat("x", j+1)})
				}
				loc.Courses = append(loc.Courses, c)
			}
			s := &school.School{Name: "S", Locations: []school.Location{loc}}
			assert.Len(t, flatten.Collect(s), tt.want)
		})
	}
}

func TestRowsRestartable(t *testing.T) {
	s := sample()
	seq := flatten.Rows(s)

	first := slices.Collect(seq)
	s.Name = "Changed"
	s.Locations[0].Courses = nil
	second := slices.Collect(seq)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestRowsStopEarly(t *testing.T) {
	n := 0
	for range flatten.Rows(sample()) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestRowsRecoverPricePairs(t *testing.T) {
	s := sample()
	type pair struct{ Duration, Price string }

	got := map[string][]pair{}
	for r := range flatten.Rows(s) {
		if r.Duration == "" {
			continue
		}
		key := r.City + "/" + r.Country + "/" + r.CourseName
		got[key] = append(got[key], pair{r.Duration, r.Price})
	}

	want := map[string][]pair{}
	for _, loc := range s.Locations {
		for _, c := range loc.Courses {
			for _, p := range c.Prices {
				key := loc.City + "/" + loc.Country + "/" + c.Name
				want[key] = append(want[key], pair{p.Duration, p.Price})
			}
		}
	}
	assert.Equal(t, want, got)
}

func TestRowsNoCourses(t *testing.T) {
	s := &school.School{Name: "Empty", Locations: []school.Location{{City: "Dublin", Country: "IE"}}}
	assert.Empty(t, flatten.Collect(s))
	assert.Empty(t, flatten.Collect(nil))
}

func TestRowsMissingSchoolName(t *testing.T) {
	sink := report.NewCollector()
	s := sample()
	s.Name = ""

	rows := flatten.Collect(s, flatten.WithSink(sink))

	require.NotEmpty(t, rows)
	assert.Empty(t, rows[0].SchoolName)
	issues := sink.Filter(report.StageFlatten, report.Warning)
	require.Len(t, issues, 1)
	assert.Equal(t, "name", issues[0].Path)
}

func TestAccommodationDescriptionTruncated(t *testing.T) {
	long := strings.Repeat("é", 250)
	s := &school.School{
		Name: "S",
		Locations: []school.Location{{
			City: "Dublin", Country: "IE",
			Courses:        []school.Course{{Name: "GE"}},
			Accommodations: []school.Accommodation{{Type: "Residence", Description: long}},
		}},
	}

	rows := flatten.Collect(s)
	require.Len(t, rows, 1)
	want := "Type: Residence, Description: " + strings.Repeat("é", 197) + "..."
	assert.Equal(t, want, rows[0].Accommodations)
}

func TestRowFields(t *testing.T) {
	r := flatten.Row{SchoolName: "S", Terms: "T"}
	fields := r.Fields()

	require.Len(t, fields, len(flatten.Columns()))
	assert.Equal(t, flatten.Field{Name: "School Name", Value: "S"}, fields[0])
	assert.Equal(t, flatten.Field{Name: "Terms", Value: "T"}, fields[len(fields)-1])
}
