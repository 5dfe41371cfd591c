package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/coursemap/pkg/errors"
)

// Format is the encoding of a partial-record document.
type Format string

// Supported document formats.
const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return FormatAuto
}

// Parse decodes a document keeping mapping keys in document order.
// FormatAuto treats input starting with '{' or '[' as JSON and anything
// else as YAML.
func Parse(data []byte, format Format) (any, error) {
	if format == FormatAuto {
		format = FormatYAML
		if t := bytes.TrimSpace(data); len(t) > 0 && (t[0] == '{' || t[0] == '[') {
			format = FormatJSON
		}
	}
	if format == FormatJSON {
		return parseJSON(data)
	}
	var v any
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return v, nil
}

// parseJSON walks the token stream so objects become ordered mappings.
func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := jsonValue(dec)
	if err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.NewParseError("json", "", "unexpected data after top-level value", err)
	}
	return v, nil
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		m := yaml.MapSlice{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			m = append(m, yaml.MapItem{Key: kt, Value: v})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return m, nil
	case '[':
		l := []any{}
		for dec.More() {
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// ParseText extracts the first JSON object from free-form model output,
// tolerating markdown code fences and surrounding prose.
func ParseText(s string) (any, error) {
	raw, err := CleanJSON(s)
	if err != nil {
		return nil, err
	}
	return parseJSON(raw)
}

// CleanJSON returns the first JSON object in s as raw bytes.
func CleanJSON(s string) (json.RawMessage, error) {
	candidate := findFirstJSON(stripCodeFences(s))
	if candidate == "" {
		return nil, errors.NewParseError("json", "", "no JSON object in text", errors.ErrEmptyResponse)
	}
	if !json.Valid([]byte(candidate)) {
		return nil, errors.NewParseError("json", "", "malformed JSON object in text", nil)
	}
	return json.RawMessage(candidate), nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// findFirstJSON returns the first balanced {...} span, skipping braces
// inside string literals.
func findFirstJSON(s string) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// Records splits a decoded document into partial records. It accepts a
// single record, a list of records, or an envelope carrying the records
// under "raw_results".
func Records(doc any) []any {
	if l, ok := list(doc); ok {
		return l
	}
	if m, ok := mapping(doc); ok {
		if raw, ok := lookup(m, "raw_results"); ok {
			if l, ok := list(raw); ok {
				return l
			}
		}
	}
	return []any{doc}
}

// Read parses every partial record in r.
func Read(r io.Reader, format Format) ([]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	return Records(doc), nil
}

// ReadFile parses every partial record in the file at path.
func ReadFile(path string) ([]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	recs, err := Read(f, FormatFromPath(path))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return recs, nil
}
