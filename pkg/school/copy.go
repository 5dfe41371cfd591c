package school

// Clone creates a deep copy of the school. Returns nil for a nil school.
func (s *School) Clone() *School {
	if s == nil {
		return nil
	}
	out := *s
	out.Locations = DeepCopyLocations(s.Locations)
	out.Terms = s.Terms.Clone()
	return &out
}

// DeepCopyLocations creates a deep copy of a location list.
// Returns nil if the input is nil.
func DeepCopyLocations(locations []Location) []Location {
	if locations == nil {
		return nil
	}
	result := make([]Location, len(locations))
	for i, loc := range locations {
		result[i] = DeepCopyLocation(loc)
	}
	return result
}

// DeepCopyLocation creates a deep copy of a Location including its courses,
// accommodations and fees.
func DeepCopyLocation(loc Location) Location {
	out := loc
	if loc.Courses != nil {
		out.Courses = make([]Course, len(loc.Courses))
		for i, c := range loc.Courses {
			out.Courses[i] = DeepCopyCourse(c)
		}
	}
	if loc.Accommodations != nil {
		out.Accommodations = make([]Accommodation, len(loc.Accommodations))
		for i, a := range loc.Accommodations {
			out.Accommodations[i] = DeepCopyAccommodation(a)
		}
	}
	if loc.AdditionalFees != nil {
		out.AdditionalFees = make([]Fee, len(loc.AdditionalFees))
		copy(out.AdditionalFees, loc.AdditionalFees)
	}
	return out
}

// DeepCopyCourse creates a deep copy of a Course including its prices.
func DeepCopyCourse(c Course) Course {
	out := c
	out.TotalFee = copyAmount(c.TotalFee)
	if c.Prices != nil {
		out.Prices = make([]Price, len(c.Prices))
		for i, p := range c.Prices {
			out.Prices[i] = DeepCopyPrice(p)
		}
	}
	return out
}

// DeepCopyPrice creates a deep copy of a Price.
func DeepCopyPrice(p Price) Price {
	out := p
	out.TotalPrice = copyAmount(p.TotalPrice)
	return out
}

// DeepCopyAccommodation creates a deep copy of an Accommodation.
func DeepCopyAccommodation(a Accommodation) Accommodation {
	out := a
	out.Supplements = a.Supplements.Clone()
	return out
}

func copyAmount(a *Amount) *Amount {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}
