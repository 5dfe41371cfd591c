package ingest

import (
	"strings"

	"github.com/agentstation/coursemap/pkg/money"
	"github.com/agentstation/coursemap/pkg/report"
	"github.com/agentstation/coursemap/pkg/school"
)

// fees normalizes both fee encodings to the list form.
//
//	{"registration": "€85"}                                  → [{registration 85 EUR}]
//	[{"name": "course_materials", "price": 45, "currency": "EUR"}] → [{course_materials 45 EUR}]
func (w walker) fees(m []entry, path, key string) []school.Fee {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	path = report.Field(path, key)

	if fm, ok := mapping(v); ok {
		var out []school.Fee
		for _, e := range fm {
			amount, ok := text(e.val)
			if !ok {
				w.warn(report.Field(path, e.key), "expected text, got %T; fee dropped", e.val)
				continue
			}
			name := feeName(e.key)
			if name == "" {
				w.warn(path, "fee has no name; fee dropped")
				continue
			}
			out = append(out, newFee(name, amount, ""))
		}
		return out
	}

	l, ok := list(v)
	if !ok {
		w.warn(path, "expected a mapping or list, got %T; fees ignored", v)
		return nil
	}
	var out []school.Fee
	for i, raw := range l {
		p := report.Index(path, i)
		fm, ok := mapping(raw)
		if !ok {
			w.warn(p, "expected a mapping, got %T; fee dropped", raw)
			continue
		}
		name := w.str(fm, p, "name")
		if name == "" {
			w.warn(p, "fee has no name; fee dropped")
			continue
		}
		out = append(out, newFee(name, w.str(fm, p, "price", "amount"), w.str(fm, p, "currency")))
	}
	return out
}

// newFee strips the currency symbol from the amount into the currency
// field. An explicit currency wins over the inferred one.
func newFee(name, amount, currency string) school.Fee {
	if currency == "" {
		currency = money.InferCurrency(amount)
	}
	return school.Fee{
		Name:     name,
		Price:    money.StripSymbols(amount),
		Currency: money.Normalize(currency),
	}
}

// pairs normalizes terms and supplements. A mapping keeps its entries; a
// list of {name, price, currency} records renders each as "price currency".
func (w walker) pairs(m []entry, path, key string) school.Pairs {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	path = report.Field(path, key)

	if pm, ok := mapping(v); ok {
		var out school.Pairs
		for _, e := range pm {
			s, ok := text(e.val)
			if !ok {
				w.warn(report.Field(path, e.key), "expected text, got %T; entry dropped", e.val)
				continue
			}
			out = out.Set(e.key, s)
		}
		return out
	}

	l, ok := list(v)
	if !ok {
		w.warn(path, "expected a mapping or list, got %T; entries ignored", v)
		return nil
	}
	var out school.Pairs
	for i, raw := range l {
		p := report.Index(path, i)
		em, ok := mapping(raw)
		if !ok {
			w.warn(p, "expected a mapping, got %T; entry dropped", raw)
			continue
		}
		name := w.str(em, p, "name")
		if name == "" {
			w.warn(p, "entry has no name; entry dropped")
			continue
		}
		value := w.str(em, p, "value", "description", "text")
		if value == "" {
			value = strings.TrimSpace(w.str(em, p, "price") + " " + w.str(em, p, "currency"))
		}
		out = out.Set(name, value)
	}
	return out
}
