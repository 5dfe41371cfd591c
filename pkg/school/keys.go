package school

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// LocationKey is the dedup identity of a Location.
type LocationKey struct {
	City    string
	Country string
}

// Valid reports whether both parts of the key are present.
func (k LocationKey) Valid() bool {
	return k.City != "" && k.Country != ""
}

// String implements fmt.Stringer.
func (k LocationKey) String() string {
	return k.City + "/" + k.Country
}

// foldKey trims, NFC-normalizes and case-folds s so that "Dublin ",
// "dublin" and "DUBLIN" compare equal. A Caser is stateful, so one is
// created per call.
func foldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Key returns the case-insensitive, whitespace-trimmed location identity.
func (l Location) Key() LocationKey {
	return LocationKey{City: foldKey(l.City), Country: foldKey(l.Country)}
}

// CourseKey is the dedup identity of a Course.
type CourseKey struct {
	Name           string
	LessonsPerWeek string
}

// Key returns the course identity. When withIntensity is false only the
// name takes part, so duplicate names collapse into one course.
func (c Course) Key(withIntensity bool) CourseKey {
	if !withIntensity {
		return CourseKey{Name: c.Name}
	}
	return CourseKey{Name: c.Name, LessonsPerWeek: c.LessonsPerWeek}
}

// Key returns the price identity.
func (p Price) Key() string { return p.Duration }

// Key returns the accommodation identity.
func (a Accommodation) Key() string { return a.Type }

// Key returns the fee identity.
func (f Fee) Key() string { return f.Name }

// IndexOfLocation returns the index of the location matching key, or -1.
func IndexOfLocation(locations []Location, key LocationKey) int {
	for i := range locations {
		if locations[i].Key() == key {
			return i
		}
	}
	return -1
}

// IndexOfPrice returns the index of the price with the given duration, or -1.
func IndexOfPrice(prices []Price, duration string) int {
	for i := range prices {
		if prices[i].Duration == duration {
			return i
		}
	}
	return -1
}

// IndexOfAccommodation returns the index of the accommodation of the given type, or -1.
func IndexOfAccommodation(accs []Accommodation, typ string) int {
	for i := range accs {
		if accs[i].Type == typ {
			return i
		}
	}
	return -1
}

// IndexOfFee returns the index of the fee with the given name, or -1.
func IndexOfFee(fees []Fee, name string) int {
	for i := range fees {
		if fees[i].Name == name {
			return i
		}
	}
	return -1
}
