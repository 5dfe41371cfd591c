// Package money turns textual prices such as "€1,250" into numbers and
// infers ISO currency codes from currency symbols.
package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// symbols is the fixed symbol→code table. Order matters for inference
// when a string carries more than one symbol.
var symbols = []struct {
	Symbol string
	Code   string
}{
	{"€", "EUR"},
	{"$", "USD"},
	{"£", "GBP"},
}

// decimal is the only number form Parse accepts once symbols and
// separators are gone. Exponents, hex floats, NaN and Inf are rejected.
var decimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// Parse strips known currency symbols, ISO codes and thousands separators
// from s and parses the remainder as a plain decimal. Commas are always
// thousands separators: "1.234,50" reads as 1.2345. It reports false when
// nothing numeric is left.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, sym := range symbols {
		s = strings.ReplaceAll(s, sym.Symbol, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if _, rest, ok := splitCode(s); ok {
		s = rest
	}
	if !decimal.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// InferCurrency returns the ISO code for the first known symbol in s, or
// for a leading or trailing ISO code such as "EUR 85". It returns "" when
// no currency can be recognized.
func InferCurrency(s string) string {
	for _, sym := range symbols {
		if strings.Contains(s, sym.Symbol) {
			return sym.Code
		}
	}
	if code, _, ok := splitCode(strings.TrimSpace(strings.ReplaceAll(s, ",", ""))); ok {
		return code
	}
	return ""
}

// Normalize returns the canonical ISO 4217 form of code ("eur" → "EUR").
// A symbol is mapped through the symbol table. Unrecognized input is
// returned trimmed but otherwise unchanged.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	for _, sym := range symbols {
		if code == sym.Symbol {
			return sym.Code
		}
	}
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String()
	}
	return code
}

// StripSymbols removes currency symbols from s, keeping any digits and
// separators as written.
func StripSymbols(s string) string {
	for _, sym := range symbols {
		s = strings.ReplaceAll(s, sym.Symbol, "")
	}
	return strings.TrimSpace(s)
}

// splitCode detects a three-letter ISO code before or after the amount.
func splitCode(s string) (code, rest string, ok bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return "", s, false
	}
	for i, f := range fields {
		if len(f) != 3 {
			continue
		}
		unit, err := currency.ParseISO(f)
		if err != nil {
			continue
		}
		return unit.String(), fields[1-i], true
	}
	return "", s, false
}
