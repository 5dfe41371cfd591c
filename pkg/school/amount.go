package school

import (
	"strconv"
)

// Amount is a numeric value the merger may have computed itself.
// Derived is not serialized; it records that Value came from sibling
// data rather than from an extracted field, so a later recomputation
// may replace it while an explicit value is kept.
type Amount struct {
	Value   float64
	Derived bool
}

// Explicit returns an extracted amount.
func Explicit(v float64) *Amount {
	return &Amount{Value: v}
}

// Derived returns a computed amount.
func Derived(v float64) *Amount {
	return &Amount{Value: v, Derived: true}
}

// String formats the amount without trailing zeros.
func (a *Amount) String() string {
	if a == nil {
		return ""
	}
	return strconv.FormatFloat(a.Value, 'f', -1, 64)
}

// MarshalJSON writes the amount as a plain number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(a.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON reads a plain number as an explicit amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*a = Amount{Value: v}
	return nil
}

// MarshalYAML writes the amount as a plain number.
func (a Amount) MarshalYAML() (any, error) {
	return a.Value, nil
}
