package reconcile_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/ingest"
	"github.com/agentstation/coursemap/pkg/reconcile"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

// panicMerger fails on any incoming school with the given name.
type panicMerger struct {
	reconcile.Merger
	on string
}

func (p panicMerger) School(existing, incoming school.School) school.School {
	if incoming.Name == p.on {
		// Partially mutate a copy to show it is never observed.
		existing.Name = "corrupted"
		panic("boom")
	}
	return p.Merger.School(existing, incoming)
}

func fold(t *testing.T, partials []*school.School, opts ...reconcile.Option) *reconcile.Result {
	t.Helper()
	r, err := reconcile.New(opts...)
	require.NoError(t, err)
	return r.Fold(context.Background(), partials)
}

func decode(t *testing.T, doc string) *school.School {
	t.Helper()
	raw, err := ingest.Parse([]byte(doc), ingest.FormatJSON)
	require.NoError(t, err)
	s, err := ingest.Decode(raw, nil)
	require.NoError(t, err)
	return s
}

func TestFoldDublinPages(t *testing.T) {
	p1 := dublin("Dublin", "IE", "2 weeks", "€300")
	p1.Name = "Centre of English Studies"
	p2 := dublin("dublin", "ie", "4 weeks", "€550")

	res := fold(t, []*school.School{&p1, &p2})

	require.True(t, res.IsSuccess())
	assert.Equal(t, "Centre of English Studies", res.School.Name)
	require.Len(t, res.School.Locations, 1)
	loc := res.School.Locations[0]
	assert.Equal(t, "Dublin", loc.City)
	assert.Equal(t, "IE", loc.Country)
	require.Len(t, loc.Courses, 1)
	require.Len(t, loc.Courses[0].Prices, 2)
	assert.Equal(t, "2 weeks", loc.Courses[0].Prices[0].Duration)
	assert.Equal(t, "€300", loc.Courses[0].Prices[0].Price)
	assert.Equal(t, "4 weeks", loc.Courses[0].Prices[1].Duration)
	assert.Equal(t, "€550", loc.Courses[0].Prices[1].Price)

	stats := res.Metadata.Stats
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2, stats.Folded)
	assert.Equal(t, 1, stats.Locations)
	assert.Equal(t, 1, stats.Courses)
	assert.Equal(t, 2, stats.Prices)
}

func TestFoldFeeEncodings(t *testing.T) {
	p1 := decode(t, `{"locations": [{"city": "Dublin", "country": "IE", "additional_fees": {"registration": "€85"}}]}`)
	p2 := decode(t, `{"locations": [{"city": "Dublin", "country": "IE", "additional_fees": [{"name": "course_materials", "price": 45, "currency": "EUR"}]}]}`)

	res := fold(t, []*school.School{p1, p2})

	require.Len(t, res.School.Locations, 1)
	want := []school.Fee{
		{Name: "registration", Price: "85", Currency: "EUR"},
		{Name: "course_materials", Price: "45", Currency: "EUR"},
	}
	if diff := cmp.Diff(want, res.School.Locations[0].AdditionalFees); diff != "" {
		t.Errorf("fees mismatch (-want +got):\n%s", diff)
	}
}

func TestFoldSkipsNilPages(t *testing.T) {
	sink := report.NewCollector()
	p := dublin("Dublin", "IE", "2 weeks", "€300")

	res := fold(t, []*school.School{nil, &p, nil}, reconcile.WithSink(sink))

	assert.Len(t, res.School.Locations, 1)
	assert.Equal(t, 2, res.Metadata.Stats.Skipped)
	assert.Equal(t, 1, res.Metadata.Stats.Folded)

	issues := sink.Filter(report.StageFold, report.Warning)
	require.Len(t, issues, 2)
	assert.Equal(t, 1, issues[0].Page)
	assert.Equal(t, 3, issues[1].Page)
}

func TestFoldEmpty(t *testing.T) {
	res := fold(t, nil)

	require.NotNil(t, res.School)
	assert.True(t, res.School.IsEmpty())
	assert.True(t, res.IsSuccess())
}

func TestFoldOrderMatters(t *testing.T) {
	a := school.School{Name: "Old Name"}
	b := school.School{Name: "New Name"}

	assert.Equal(t, "New Name", fold(t, []*school.School{&a, &b}).School.Name)
	assert.Equal(t, "Old Name", fold(t, []*school.School{&b, &a}).School.Name)
}

func TestFoldCommutesOnDisjointFields(t *testing.T) {
	dublin := func(p school.Price) school.School {
		return school.School{Locations: []school.Location{{
			City: "Dublin", Country: "IE",
			Courses: []school.Course{{Name: "General English", Prices: []school.Price{p}}},
		}}}
	}

	tests := []struct {
		name string
		a, b school.School
	}{
		{
			name: "name and terms",
			a:    school.School{Name: "CES"},
			b:    school.School{Terms: school.Pairs{{Name: "Cancellation", Value: "14 days notice"}}},
		},
		{
			name: "price text and currency",
			a:    dublin(school.Price{Duration: "2 weeks", Price: "300"}),
			b:    dublin(school.Price{Duration: "2 weeks", Currency: "EUR"}),
		},
		{
			name: "symbol price and explicit currency",
			a:    dublin(school.Price{Duration: "2 weeks", Price: "€300"}),
			b:    dublin(school.Price{Duration: "2 weeks", Currency: "USD"}),
		},
		{
			name: "address and accommodation",
			a:    school.School{Locations: []school.Location{{City: "Dublin", Country: "IE", Address: "31 Dame Street"}}},
			b: school.School{Locations: []school.Location{{
				City: "Dublin", Country: "IE",
				Accommodations: []school.Accommodation{{Type: "Homestay", PricePerWeek: "250"}},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a1, b1 := *tt.a.Clone(), *tt.b.Clone()
			a2, b2 := *tt.a.Clone(), *tt.b.Clone()

			ab := fold(t, []*school.School{&a1, &b1}).School
			ba := fold(t, []*school.School{&b2, &a2}).School

			if diff := cmp.Diff(ab, ba); diff != "" {
				t.Errorf("fold([a, b]) != fold([b, a]) (-ab +ba):\n%s", diff)
			}
		})
	}
}

func TestFoldRepricedDuration(t *testing.T) {
	page := func(price string) *school.School {
		return &school.School{Locations: []school.Location{{
			City: "Dublin", Country: "IE",
			Courses: []school.Course{{Name: "General English", Prices: []school.Price{{Duration: "2 weeks", Price: price}}}},
		}}}
	}

	got := fold(t, []*school.School{page("€300"), page("$320")}).School.Locations[0].Courses[0]
	require.Len(t, got.Prices, 1)
	assert.Equal(t, "$320", got.Prices[0].Price)
	assert.Equal(t, "USD", got.Prices[0].Currency)
	assert.Equal(t, school.Derived(320), got.Prices[0].TotalPrice)
	assert.Equal(t, school.Derived(320), got.TotalFee)

	got = fold(t, []*school.School{page("$320"), page("€300")}).School.Locations[0].Courses[0]
	assert.Equal(t, "EUR", got.Prices[0].Currency)
	assert.Equal(t, school.Derived(300), got.TotalFee)
}

func TestFoldNoDuplicateLocationKeys(t *testing.T) {
	pages := []*school.School{
		{Locations: []school.Location{{City: "Dublin", Country: "IE"}, {City: "Cork", Country: "IE"}}},
		{Locations: []school.Location{{City: " DUBLIN ", Country: "ie"}, {City: "dublin", Country: "IE"}}},
		{Locations: []school.Location{{City: "cork", Country: "Ie"}, {City: "Malta", Country: "MT"}}},
	}

	res := fold(t, pages)

	seen := map[school.LocationKey]bool{}
	for _, loc := range res.School.Locations {
		assert.False(t, seen[loc.Key()], "duplicate location %s", loc.Key())
		seen[loc.Key()] = true
	}
	assert.Len(t, res.School.Locations, 3)
}

func TestFoldRecoversFromPanic(t *testing.T) {
	sink := report.NewCollector()
	m, err := reconcile.NewMerger()
	require.NoError(t, err)

	p1 := dublin("Dublin", "IE", "2 weeks", "€300")
	p2 := school.School{
		Name:      "Bad Page",
		Terms:     school.Pairs{{Name: "Refunds", Value: "none"}},
		Locations: []school.Location{{City: "Cork", Country: "IE"}},
	}
	p3 := dublin("Dublin", "IE", "4 weeks", "€550")

	res := fold(t, []*school.School{&p1, &p2, &p3},
		reconcile.WithMerger(panicMerger{Merger: m, on: "Bad Page"}),
		reconcile.WithSink(sink),
	)

	assert.False(t, res.IsSuccess())
	assert.Equal(t, 1, res.Metadata.Stats.Recovered)
	assert.Equal(t, 2, res.Metadata.Stats.Folded)

	// Name and terms are salvaged, the locations of the failed page are not.
	assert.Equal(t, "Bad Page", res.School.Name)
	assert.Equal(t, school.Pairs{{Name: "Refunds", Value: "none"}}, res.School.Terms)
	require.Len(t, res.School.Locations, 1)
	assert.Equal(t, "Dublin", res.School.Locations[0].City)
	assert.Len(t, res.School.Locations[0].Courses[0].Prices, 2)

	issues := sink.Filter(report.StageFold, report.Error)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Page)
	var mergeErr *errors.MergeError
	require.ErrorAs(t, issues[0].Err, &mergeErr)
	assert.Equal(t, 2, mergeErr.Page)
	require.Len(t, res.Errors, 1)
}

func TestFoldSalvageKeepsExistingName(t *testing.T) {
	m, err := reconcile.NewMerger()
	require.NoError(t, err)
	p1 := school.School{Name: "First"}
	p2 := school.School{Name: "Bad Page"}

	res := fold(t, []*school.School{&p1, &p2}, reconcile.WithMerger(panicMerger{Merger: m, on: "Bad Page"}))

	assert.Equal(t, "First", res.School.Name)
}

func TestFoldStampsPageOnMergeIssues(t *testing.T) {
	sink := report.NewCollector()
	p1 := school.School{Name: "CES"}
	p2 := school.School{Locations: []school.Location{{City: "Dublin"}}}

	res := fold(t, []*school.School{&p1, &p2}, reconcile.WithSink(sink))

	issues := sink.Filter(report.StageMerge, report.Warning)
	require.Len(t, issues, 1)
	assert.Equal(t, 2, issues[0].Page)
	assert.Equal(t, "locations[0]", issues[0].Path)
	assert.Equal(t, 1, res.Metadata.Stats.Issues)
}

func TestFoldConvenience(t *testing.T) {
	p := dublin("Dublin", "IE", "2 weeks", "€300")

	res, err := reconcile.Fold(context.Background(), []*school.School{&p}, reconcile.WithIntensityKey(true))
	require.NoError(t, err)
	assert.Len(t, res.School.Locations, 1)

	_, err = reconcile.Fold(context.Background(), nil, reconcile.WithMerger(nil))
	assert.True(t, errors.IsValidationError(err))
}

func TestResultSummary(t *testing.T) {
	p := dublin("Dublin", "IE", "2 weeks", "€300")
	res := fold(t, []*school.School{nil, &p})

	assert.Equal(t, "Folded 1 of 2 pages into 1 locations, 1 courses, 1 prices; 1 skipped (1 issues).", res.Summary())
	assert.False(t, res.Metadata.EndTime.IsZero())
}
