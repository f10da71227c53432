// Package validate checks records served by the API against their panel
// descriptor and reports every inconsistency found.
package validate

import (
	"fmt"
	"slices"
	"strings"

	"rpgpanel/internal/config"
	"rpgpanel/internal/resource"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeMissingID       = "missing_identifier"
	codeDuplicateID     = "duplicate_identifier"
	codeEnumInvalid     = "enum_value_invalid"
	codeMissingRequired = "missing_required_property"
	codeTypeMismatch    = "type_mismatch"
	codeNotNumeric      = "leaderboard_not_numeric"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Panel    string
	Record   string
	Field    string
}

type Report struct {
	Checked int
	Issues  []Issue
}

// Errors counts error-severity issues.
func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Run checks records in server order. Records are expected raw, before
// the cache collapses duplicate identifiers.
func Run(panel *config.Panel, records []resource.Record) (*Report, error) {
	if panel == nil {
		return nil, fmt.Errorf("panel is required")
	}

	report := &Report{Checked: len(records)}
	seen := make(map[string]int, len(records))
	for i, record := range records {
		id := record.ID(panel.IDField)
		if strings.TrimSpace(id) == "" {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityError,
				Code:     codeMissingID,
				Message:  fmt.Sprintf("record %d has no %s", i, panel.IDField),
				Panel:    panel.Name,
				Field:    panel.IDField,
			})
			continue
		}
		if first, dup := seen[id]; dup {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateID,
				Message:  fmt.Sprintf("%s %q appears at positions %d and %d", panel.IDField, id, first, i),
				Panel:    panel.Name,
				Record:   id,
				Field:    panel.IDField,
			})
		} else {
			seen[id] = i
		}

		report.Issues = append(report.Issues, validateFields(panel.Name, id, "", record, panel.Fields)...)

		if panel.Leaderboard != "" {
			if _, ok := record.Number(panel.Leaderboard); !ok {
				report.Issues = append(report.Issues, Issue{
					Severity: SeverityWarn,
					Code:     codeNotNumeric,
					Message:  fmt.Sprintf("%s is not numeric; ranked last", panel.Leaderboard),
					Panel:    panel.Name,
					Record:   id,
					Field:    panel.Leaderboard,
				})
			}
		}
	}
	return report, nil
}

func validateFields(panel, id, prefix string, values map[string]any, fields []config.Field) []Issue {
	var issues []Issue
	for _, field := range fields {
		name := prefix + field.Name
		value, present := values[field.Name]
		if !present || value == nil || value == "" {
			if field.Required {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeMissingRequired,
					Message:  fmt.Sprintf("missing required property: %s", name),
					Panel:    panel,
					Record:   id,
					Field:    name,
				})
			}
			continue
		}

		switch field.Type {
		case config.FieldEnum:
			s, ok := value.(string)
			if ok && !slices.Contains(field.Values, s) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeEnumInvalid,
					Message:  fmt.Sprintf("invalid enum value for %s: %s", name, s),
					Panel:    panel,
					Record:   id,
					Field:    name,
				})
			}
		case config.FieldInt, config.FieldFloat:
			if _, ok := resource.ToFloat(value); !ok {
				issues = append(issues, mismatch(panel, id, name, "a number", value))
			}
		case config.FieldBool:
			if _, ok := value.(bool); !ok {
				issues = append(issues, mismatch(panel, id, name, "a boolean", value))
			}
		case config.FieldList:
			if _, ok := value.([]any); !ok {
				issues = append(issues, mismatch(panel, id, name, "a list", value))
			}
		case config.FieldGroup:
			items, ok := value.([]any)
			if !ok {
				issues = append(issues, mismatch(panel, id, name, "a list of entries", value))
				continue
			}
			for i, item := range items {
				entry, ok := item.(map[string]any)
				if !ok {
					issues = append(issues, mismatch(panel, id, fmt.Sprintf("%s[%d]", name, i), "an object", item))
					continue
				}
				issues = append(issues, validateFields(panel, id, fmt.Sprintf("%s[%d].", name, i), entry, field.Fields)...)
			}
		}
	}
	return issues
}

func mismatch(panel, id, name, want string, value any) Issue {
	return Issue{
		Severity: SeverityWarn,
		Code:     codeTypeMismatch,
		Message:  fmt.Sprintf("%s should be %s, got %T", name, want, value),
		Panel:    panel,
		Record:   id,
		Field:    name,
	}
}
