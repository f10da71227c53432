// Package resource holds the data model shared by panels: records as the
// API returns them, filter selections, and time-bounded sessions.
package resource

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Record is one entity as decoded from JSON.
type Record map[string]any

// ID returns the identifier stored under field, rendered as a string.
func (r Record) ID(field string) string {
	return r.String(field)
}

// String renders the value of field for display and comparison. Missing
// and null values render as "".
func (r Record) String(field string) string {
	value, ok := r[field]
	if !ok || value == nil {
		return ""
	}
	return FormatValue(value)
}

// Number returns field as float64 and whether it was numeric.
func (r Record) Number(field string) (float64, bool) {
	return ToFloat(r[field])
}

// Clone deep-copies r so drafts never alias cached data.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = CloneValue(value)
	}
	return out
}

// Equal compares two records field for field.
func (r Record) Equal(other Record) bool {
	return reflect.DeepEqual(map[string]any(r), map[string]any(other))
}

// Keys returns the record's field names sorted.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CloneValue deep-copies nested maps and slices of a decoded value.
func CloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = CloneValue(item)
		}
		return out
	case Record:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}

// FormatValue renders scalars plainly and nested values as compact JSON.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case []any, map[string]any, Record, []string:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat converts numeric JSON values (and numeric strings) to float64.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Records converts a decoded JSON payload into records. Arrays keep their
// order; an object keyed by id becomes a list ordered by key. Non-object
// elements are skipped.
func Records(payload any) ([]Record, error) {
	switch v := payload.(type) {
	case nil:
		return []Record{}, nil
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, Record(obj))
			}
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]Record, 0, len(keys))
		for _, key := range keys {
			if obj, ok := v[key].(map[string]any); ok {
				out = append(out, Record(obj))
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list or object payload, got %T", payload)
	}
}
