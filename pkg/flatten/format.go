package flatten

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/school"
)

// formatPairs renders "k: v; k: v".
func formatPairs(p school.Pairs) string {
	parts := make([]string, 0, len(p))
	for _, e := range p {
		parts = append(parts, e.Name+": "+e.Value)
	}
	return strings.Join(parts, "; ")
}

// formatFees renders "name: price currency; ...".
func formatFees(fees []school.Fee) string {
	parts := make([]string, 0, len(fees))
	for _, f := range fees {
		price := f.Price
		if price == "" {
			price = constants.Placeholder
		}
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s: %s %s", f.Name, price, f.Currency)))
	}
	return strings.Join(parts, "; ")
}

// formatAccommodations renders every accommodation and joins them with " | ".
func formatAccommodations(accs []school.Accommodation) string {
	parts := make([]string, 0, len(accs))
	for _, a := range accs {
		parts = append(parts, formatAccommodation(a))
	}
	return strings.Join(parts, " | ")
}

func formatAccommodation(a school.Accommodation) string {
	typ := a.Type
	if typ == "" {
		typ = constants.Placeholder
	}
	var b strings.Builder
	b.WriteString("Type: ")
	b.WriteString(typ)
	if a.PricePerWeek != "" {
		b.WriteString(", Price/week: ")
		b.WriteString(a.PricePerWeek)
	}
	if a.Currency != "" {
		b.WriteString(" ")
		b.WriteString(a.Currency)
	}
	if a.Description != "" {
		b.WriteString(", Description: ")
		b.WriteString(truncate(a.Description, constants.MaxDescriptionLength))
	}
	if s := formatPairs(a.Supplements); s != "" {
		b.WriteString(", Supplements: ")
		b.WriteString(s)
	}
	return b.String()
}

// truncate shortens s to limit characters, ending in "..." when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-3]) + "..."
}

// ageRange prefers the textual range and falls back to "min-max".
func ageRange(c school.Course) string {
	if c.AgeRange != "" {
		return c.AgeRange
	}
	if c.MinAge == "" && c.MaxAge == "" {
		return ""
	}
	return c.MinAge + "-" + c.MaxAge
}
