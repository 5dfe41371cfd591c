package school_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap/pkg/school"
)

func TestLocationKey(t *testing.T) {
	tests := []struct {
		name  string
		a, b  school.Location
		equal bool
	}{
		{
			name:  "case and whitespace",
			a:     school.Location{City: "Dublin", Country: "IE"},
			b:     school.Location{City: "  dublin ", Country: "ie"},
			equal: true,
		},
		{
			name:  "unicode normalization",
			a:     school.Location{City: "Malmö", Country: "SE"},
			b:     school.Location{City: "Malmö", Country: "se"},
			equal: true,
		},
		{
			name: "different country",
			a:    school.Location{City: "London", Country: "GB"},
			b:    school.Location{City: "London", Country: "CA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Key() == tt.b.Key())
		})
	}

	assert.False(t, school.Location{City: " ", Country: "IE"}.Key().Valid())
	assert.True(t, school.Location{City: "Cork", Country: "IE"}.Key().Valid())
}

func TestCourseKey(t *testing.T) {
	a := school.Course{Name: "General English", LessonsPerWeek: "20"}
	b := school.Course{Name: "General English", LessonsPerWeek: "30"}

	assert.Equal(t, a.Key(false), b.Key(false))
	assert.NotEqual(t, a.Key(true), b.Key(true))
	assert.NotEqual(t, a.Key(false), school.Course{Name: "general english"}.Key(false))
}

func TestIndexOf(t *testing.T) {
	locs := []school.Location{{City: "Dublin", Country: "IE"}, {City: "Cork", Country: "IE"}}
	assert.Equal(t, 1, school.IndexOfLocation(locs, school.Location{City: "CORK", Country: "ie"}.Key()))
	assert.Equal(t, -1, school.IndexOfLocation(locs, school.LocationKey{City: "galway", Country: "ie"}))

	prices := []school.Price{{Duration: "2 weeks"}, {Duration: "4 weeks"}}
	assert.Equal(t, 1, school.IndexOfPrice(prices, "4 weeks"))
	assert.Equal(t, -1, school.IndexOfPrice(prices, "4 Weeks"))

	assert.Equal(t, 0, school.IndexOfFee([]school.Fee{{Name: "registration"}}, "registration"))
	assert.Equal(t, -1, school.IndexOfAccommodation(nil, "Homestay"))
}

func TestPairs(t *testing.T) {
	var p school.Pairs
	p = p.Set("cancellation", "14 days")
	p = p.Set("refund", "none")
	q := p.Set("cancellation", "30 days")

	v, ok := p.Get("cancellation")
	require.True(t, ok)
	assert.Equal(t, "14 days", v, "Set must not modify the receiver")

	v, _ = q.Get("cancellation")
	assert.Equal(t, "30 days", v)
	assert.Equal(t, "cancellation", q[0].Name, "overwrite keeps position")

	_, ok = q.Get("missing")
	assert.False(t, ok)
}

func TestPairsMarshalOrdered(t *testing.T) {
	p := school.Pairs{{Name: "z", Value: "last"}, {Name: "a", Value: "first"}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"z":"last","a":"first"}`, string(data))

	out, err := yaml.Marshal(p)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "z: last")
	assert.Contains(t, text, "a: first")
	assert.Less(t, strings.Index(text, "z:"), strings.Index(text, "a:"))
}

func TestAmountMarshal(t *testing.T) {
	c := school.Course{Name: "IELTS", TotalFee: school.Derived(385)}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"IELTS","total_fee":385}`, string(data))

	var back school.Course
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.TotalFee)
	assert.Equal(t, 385.0, back.TotalFee.Value)
	assert.False(t, back.TotalFee.Derived)
	assert.Equal(t, "385", back.TotalFee.String())
	assert.Empty(t, (*school.Amount)(nil).String())
}

func TestClone(t *testing.T) {
	orig := &school.School{
		Name: "Centre of English Studies",
		Locations: []school.Location{{
			City:    "Dublin",
			Country: "IE",
			Courses: []school.Course{{
				Name:   "General English",
				Prices: []school.Price{{Duration: "2 weeks", Price: "€300", TotalPrice: school.Explicit(300)}},
			}},
			Accommodations: []school.Accommodation{{Type: "Homestay", Supplements: school.Pairs{{Name: "Summer", Value: "€35/week"}}}},
			AdditionalFees: []school.Fee{{Name: "registration", Price: "85", Currency: "EUR"}},
		}},
		Terms: school.Pairs{{Name: "cancellation", Value: "14 days"}},
	}

	cp := orig.Clone()
	require.Empty(t, cmp.Diff(orig, cp))

	cp.Locations[0].Courses[0].Prices[0].TotalPrice.Value = 1
	cp.Locations[0].Accommodations[0].Supplements[0].Value = "free"
	cp.Locations[0].AdditionalFees[0].Price = "0"
	cp.Terms[0].Value = "none"

	assert.Equal(t, 300.0, orig.Locations[0].Courses[0].Prices[0].TotalPrice.Value)
	assert.Equal(t, "€35/week", orig.Locations[0].Accommodations[0].Supplements[0].Value)
	assert.Equal(t, "85", orig.Locations[0].AdditionalFees[0].Price)
	assert.Equal(t, "14 days", orig.Terms[0].Value)

	assert.Nil(t, (*school.School)(nil).Clone())
}

func TestIsEmptyAndCounts(t *testing.T) {
	assert.True(t, (*school.School)(nil).IsEmpty())
	assert.True(t, (&school.School{}).IsEmpty())
	assert.False(t, (&school.School{Name: "x"}).IsEmpty())

	s := &school.School{Locations: []school.Location{
		{City: "a", Country: "b", Courses: []school.Course{{Name: "c", Prices: []school.Price{{Duration: "1"}, {Duration: "2"}}}, {Name: "d"}}},
		{City: "e", Country: "f"},
	}}
	l, c, p := s.Counts()
	assert.Equal(t, []int{2, 2, 2}, []int{l, c, p})
}
