package form

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"rpgpanel/internal/config"
	apperrors "rpgpanel/internal/errors"
)

// DefaultValue is the value a fresh create form holds for field.
func DefaultValue(field config.Field) any {
	switch field.Type {
	case config.FieldInt, config.FieldFloat:
		if field.Default == "" {
			return float64(0)
		}
		v, err := strconv.ParseFloat(field.Default, 64)
		if err != nil {
			return float64(0)
		}
		return v
	case config.FieldBool:
		v, _ := strconv.ParseBool(field.Default)
		return v
	case config.FieldEnum:
		if field.Default != "" {
			return field.Default
		}
		if len(field.Values) > 0 {
			return field.Values[0]
		}
		return ""
	case config.FieldList, config.FieldGroup:
		return []any{}
	default:
		return field.Default
	}
}

// Coerce converts text input into the value type of field. Numbers are kept
// as float64 to match what JSON decoding produces.
func Coerce(field config.Field, raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	switch field.Type {
	case config.FieldInt:
		if trimmed == "" {
			return float64(0), nil
		}
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, apperrors.Validation(field.Name, fmt.Sprintf("%s must be a whole number", field.Name))
		}
		return float64(v), nil
	case config.FieldFloat:
		if trimmed == "" {
			return float64(0), nil
		}
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, apperrors.Validation(field.Name, fmt.Sprintf("%s must be a number", field.Name))
		}
		return v, nil
	case config.FieldBool:
		if trimmed == "" {
			return false, nil
		}
		v, err := strconv.ParseBool(trimmed)
		if err != nil {
			return nil, apperrors.Validation(field.Name, fmt.Sprintf("%s must be true or false", field.Name))
		}
		return v, nil
	case config.FieldEnum:
		if !slices.Contains(field.Values, trimmed) {
			return nil, apperrors.Validation(field.Name, fmt.Sprintf("%s must be one of %s", field.Name, strings.Join(field.Values, ", ")))
		}
		return trimmed, nil
	case config.FieldList:
		items := []any{}
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items, nil
	case config.FieldGroup:
		return nil, apperrors.Validation(field.Name, fmt.Sprintf("%s is a group; edit its items instead", field.Name))
	default:
		return raw, nil
	}
}

// conform checks an already-typed value against field, coercing strings.
func conform(field config.Field, value any) (any, error) {
	if s, ok := value.(string); ok && field.Type != config.FieldGroup {
		return Coerce(field, s)
	}
	switch field.Type {
	case config.FieldInt, config.FieldFloat:
		switch value.(type) {
		case float64, float32, int, int64:
			return value, nil
		}
	case config.FieldBool:
		if _, ok := value.(bool); ok {
			return value, nil
		}
	case config.FieldList, config.FieldGroup:
		if _, ok := value.([]any); ok {
			return value, nil
		}
	default:
		return value, nil
	}
	if value == nil {
		return DefaultValue(field), nil
	}
	return nil, apperrors.Validation(field.Name, fmt.Sprintf("%s has the wrong type %T", field.Name, value))
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
