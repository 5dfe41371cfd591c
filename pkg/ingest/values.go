package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// entry is one key/value of a decoded mapping.
type entry struct {
	key string
	val any
}

// mapping returns the entries of v in a stable order. Ordered mappings keep
// their document order; plain Go maps are sorted by key.
func mapping(v any) ([]entry, bool) {
	switch m := v.(type) {
	case yaml.MapSlice:
		out := make([]entry, 0, len(m))
		for _, item := range m {
			out = append(out, entry{key: fmt.Sprint(item.Key), val: item.Value})
		}
		return out, true
	case map[string]any:
		out := make([]entry, 0, len(m))
		for k, v := range m {
			out = append(out, entry{key: k, val: v})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
		return out, true
	case map[any]any:
		out := make([]entry, 0, len(m))
		for k, v := range m {
			out = append(out, entry{key: fmt.Sprint(k), val: v})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
		return out, true
	}
	return nil, false
}

// lookup returns the first present, non-nil value among keys.
func lookup(m []entry, keys ...string) (any, bool) {
	for _, k := range keys {
		for _, e := range m {
			if e.key == k && e.val != nil {
				return e.val, true
			}
		}
	}
	return nil, false
}

// list returns v as a sequence.
func list(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	}
	return nil, false
}

// text renders a scalar as trimmed text. Mappings and sequences are not text.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// number reads a numeric scalar. Text is accepted when it parses cleanly.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// plain converts a decoded value to the shape encoding/json produces, which
// is what the schema validator expects.
func plain(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice, map[string]any, map[any]any:
		m, _ := mapping(t)
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[e.key] = plain(e.val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = plain(t[i])
		}
		return out
	case int:
		return json.Number(strconv.Itoa(t))
	case int64:
		return json.Number(strconv.FormatInt(t, 10))
	case uint64:
		return json.Number(strconv.FormatUint(t, 10))
	case float32:
		return json.Number(strconv.FormatFloat(float64(t), 'f', -1, 32))
	case float64:
		return json.Number(strconv.FormatFloat(t, 'f', -1, 64))
	}
	return v
}
