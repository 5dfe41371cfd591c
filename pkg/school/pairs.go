package school

import (
	"bytes"
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// Pair is one name→text entry of terms or supplements.
type Pair struct {
	Name  string
	Value string
}

// Pairs is an insertion-ordered name→text mapping. It serializes as an
// object whose keys keep their first-seen order.
type Pairs []Pair

// Get returns the value stored under name.
func (p Pairs) Get(name string) (string, bool) {
	for _, e := range p {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Set overwrites name in place or appends it. The receiver is not modified.
func (p Pairs) Set(name, value string) Pairs {
	out := p.Clone()
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Pair{Name: name, Value: value})
}

// Clone returns an independent copy.
func (p Pairs) Clone() Pairs {
	if p == nil {
		return nil
	}
	out := make(Pairs, len(p))
	copy(out, p)
	return out
}

// MarshalJSON writes p as an ordered JSON object.
func (p Pairs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes p as an ordered YAML mapping.
func (p Pairs) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(p))
	for _, e := range p {
		out = append(out, yaml.MapItem{Key: e.Name, Value: e.Value})
	}
	return out, nil
}
