package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Field types understood by forms and validators.
const (
	FieldString = "string"
	FieldText   = "text"
	FieldInt    = "int"
	FieldFloat  = "float"
	FieldBool   = "bool"
	FieldEnum   = "enum"
	FieldList   = "list"
	FieldGroup  = "group"
)

const apiPrefix = "/api/rpg/"

type Schema struct {
	Version int     `yaml:"version"`
	Panels  []Panel `yaml:"panels"`

	panelIndex map[string]*Panel
}

// Panel describes one entity type: where it lives on the API, how its
// responses are wrapped, and which fields its form edits.
type Panel struct {
	Name         string        `yaml:"name"`
	Title        string        `yaml:"title"`
	Resource     string        `yaml:"resource"`
	IDField      string        `yaml:"id_field"`
	DisplayField string        `yaml:"display_field"`
	SearchFields []string      `yaml:"search_fields"`
	FilterFields []string      `yaml:"filter_fields"`
	Columns      []string      `yaml:"columns"`
	Leaderboard  string        `yaml:"leaderboard"`
	ReadOnly     bool          `yaml:"read_only"`
	Poll         time.Duration `yaml:"poll"`
	Endpoints    Endpoints     `yaml:"endpoints"`
	Envelope     Envelope      `yaml:"envelope"`
	Fields       []Field       `yaml:"fields"`
	Progress     *Progress     `yaml:"progress"`
	Summary      []Aggregate   `yaml:"summary"`
}

// EndpointDisabled turns off an endpoint that would otherwise be defaulted.
const EndpointDisabled = "-"

// Endpoints are request paths; {id} is replaced with the escaped record id.
// An empty Get means single records are answered from the loaded list.
type Endpoints struct {
	List   string `yaml:"list"`
	Get    string `yaml:"get"`
	Create string `yaml:"create"`
	Update string `yaml:"update"`
	Delete string `yaml:"delete"`
	Stats  string `yaml:"stats"`
}

// Envelope captures how an endpoint signals success and where the payload
// sits. An empty SuccessField means HTTP status alone decides.
type Envelope struct {
	SuccessField string `yaml:"success_field"`
	MessageField string `yaml:"message_field"`
	PayloadKey   string `yaml:"payload_key"`
	// RecordKey is where the get endpoint puts its record, when that
	// differs from the list payload key.
	RecordKey string `yaml:"record_key"`
}

// ForRecord is the envelope that applies to single-record responses.
func (e Envelope) ForRecord() Envelope {
	if e.RecordKey != "" {
		e.PayloadKey = e.RecordKey
	}
	return e
}

type Field struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Values   []string `yaml:"values"`
	Default  string   `yaml:"default"`
	Required bool     `yaml:"required"`
	Fields   []Field  `yaml:"fields"`
}

// Progress marks a panel of time-bounded sessions whose remaining time and
// percent are derived from server-reported elapsed and total values.
type Progress struct {
	StartField     string `yaml:"start_field"`
	ElapsedField   string `yaml:"elapsed_field"`
	ElapsedUnit    string `yaml:"elapsed_unit"`
	TotalField     string `yaml:"total_field"`
	TotalUnit      string `yaml:"total_unit"`
	CompletedField string `yaml:"completed_field"`
}

// Aggregate is one stats-header counter computed client side.
type Aggregate struct {
	Label string `yaml:"label"`
	Kind  string `yaml:"kind"`
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

// Aggregate kinds.
const (
	AggregateCount   = "count"
	AggregateCountIf = "count_if"
	AggregateSum     = "sum"
	AggregateAvg     = "avg"
	AggregateLen     = "len_sum"
)

func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	return ParseSchema(data)
}

func ParseSchema(data []byte) (*Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	if err := validateSchema(&schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	schema.index()
	return &schema, nil
}

func (s *Schema) index() {
	s.panelIndex = make(map[string]*Panel)
	for i := range s.Panels {
		panel := &s.Panels[i]
		applyPanelDefaults(panel)
		s.panelIndex[strings.ToLower(panel.Name)] = panel
	}
}

func applyPanelDefaults(p *Panel) {
	if p.Resource == "" {
		p.Resource = p.Name
	}
	if p.Title == "" {
		p.Title = p.Name
	}
	base := apiPrefix + p.Resource
	if p.Endpoints.List == "" {
		p.Endpoints.List = base
	}
	p.Endpoints.Get = endpointOr(p.Endpoints.Get, base+"/{id}")
	p.Endpoints.Stats = endpointOr(p.Endpoints.Stats, "")
	if !p.ReadOnly {
		p.Endpoints.Create = endpointOr(p.Endpoints.Create, base)
		p.Endpoints.Update = endpointOr(p.Endpoints.Update, base+"/{id}")
		p.Endpoints.Delete = endpointOr(p.Endpoints.Delete, base+"/{id}")
	} else {
		p.Endpoints.Create = endpointOr(p.Endpoints.Create, "")
		p.Endpoints.Update = endpointOr(p.Endpoints.Update, "")
		p.Endpoints.Delete = endpointOr(p.Endpoints.Delete, "")
	}
	if p.Envelope.SuccessField != "" && p.Envelope.MessageField == "" {
		p.Envelope.MessageField = "message"
	}
	if len(p.SearchFields) == 0 {
		p.SearchFields = []string{p.IDField}
		if p.DisplayField != "" {
			p.SearchFields = append(p.SearchFields, p.DisplayField)
		}
	}
	if len(p.Columns) == 0 {
		p.Columns = []string{p.IDField}
		if p.DisplayField != "" {
			p.Columns = append(p.Columns, p.DisplayField)
		}
		for _, field := range p.Fields {
			if field.Name == p.IDField || field.Name == p.DisplayField || field.Type == FieldGroup {
				continue
			}
			p.Columns = append(p.Columns, field.Name)
		}
	}
	if p.Progress != nil {
		if p.Progress.ElapsedUnit == "" {
			p.Progress.ElapsedUnit = "s"
		}
		if p.Progress.TotalUnit == "" {
			p.Progress.TotalUnit = "s"
		}
	}
}

func endpointOr(path, fallback string) string {
	switch path {
	case EndpointDisabled:
		return ""
	case "":
		return fallback
	}
	return path
}

func validateSchema(s *Schema) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.Panels) == 0 {
		return fmt.Errorf("at least one panel is required")
	}

	names := make(map[string]struct{})
	for i, panel := range s.Panels {
		if strings.TrimSpace(panel.Name) == "" {
			return fmt.Errorf("panel %d name is required", i)
		}
		key := strings.ToLower(panel.Name)
		if _, exists := names[key]; exists {
			return fmt.Errorf("duplicate panel name: %s", panel.Name)
		}
		names[key] = struct{}{}

		if strings.TrimSpace(panel.IDField) == "" {
			return fmt.Errorf("panel %s id_field is required", panel.Name)
		}
		if panel.Endpoints.List == EndpointDisabled {
			return fmt.Errorf("panel %s list endpoint cannot be disabled", panel.Name)
		}
		if panel.Poll < 0 {
			return fmt.Errorf("panel %s poll interval must be positive", panel.Name)
		}
		if err := validateFields(panel.Name, panel.Fields); err != nil {
			return err
		}
		if panel.Leaderboard != "" {
			if field, ok := findField(panel.Fields, panel.Leaderboard); ok && field.Type != FieldInt && field.Type != FieldFloat {
				return fmt.Errorf("panel %s leaderboard field %s must be numeric", panel.Name, panel.Leaderboard)
			}
		}
		if panel.Progress != nil {
			if panel.Progress.ElapsedField == "" || panel.Progress.TotalField == "" {
				return fmt.Errorf("panel %s progress needs elapsed_field and total_field", panel.Name)
			}
			for _, unit := range []string{panel.Progress.ElapsedUnit, panel.Progress.TotalUnit} {
				if _, err := ParseUnit(unit); err != nil {
					return fmt.Errorf("panel %s progress: %w", panel.Name, err)
				}
			}
		}
		for _, agg := range panel.Summary {
			switch agg.Kind {
			case AggregateCount:
			case AggregateCountIf, AggregateSum, AggregateAvg, AggregateLen:
				if agg.Field == "" {
					return fmt.Errorf("panel %s summary %q needs a field", panel.Name, agg.Label)
				}
			default:
				return fmt.Errorf("panel %s summary %q has unknown kind %q", panel.Name, agg.Label, agg.Kind)
			}
		}
	}

	return nil
}

func validateFields(panel string, fields []Field) error {
	seen := make(map[string]struct{})
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("panel %s has field with empty name", panel)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("panel %s has duplicate field: %s", panel, field.Name)
		}
		seen[name] = struct{}{}

		switch field.Type {
		case "", FieldString, FieldText, FieldInt, FieldFloat, FieldBool, FieldList:
		case FieldEnum:
			if len(field.Values) == 0 {
				return fmt.Errorf("panel %s field %s enum has no values", panel, field.Name)
			}
		case FieldGroup:
			if len(field.Fields) == 0 {
				return fmt.Errorf("panel %s group %s has no fields", panel, field.Name)
			}
			if err := validateFields(panel+"."+field.Name, field.Fields); err != nil {
				return err
			}
		default:
			return fmt.Errorf("panel %s field %s has unknown type %q", panel, field.Name, field.Type)
		}
	}
	return nil
}

// ParseUnit maps a progress unit to a duration.
func ParseUnit(unit string) (time.Duration, error) {
	switch strings.ToLower(unit) {
	case "ms":
		return time.Millisecond, nil
	case "", "s":
		return time.Second, nil
	case "m", "min":
		return time.Minute, nil
	default:
		return 0, fmt.Errorf("unknown unit %q", unit)
	}
}

func findField(fields []Field, name string) (*Field, bool) {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i], true
		}
	}
	return nil, false
}

func (s *Schema) PanelByName(name string) (*Panel, bool) {
	if s == nil {
		return nil, false
	}
	panel, ok := s.panelIndex[strings.ToLower(name)]
	return panel, ok
}

func (s *Schema) IsValidPanel(name string) bool {
	_, ok := s.PanelByName(name)
	return ok
}

// Names lists panel names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Panels))
	for _, panel := range s.Panels {
		names = append(names, panel.Name)
	}
	return names
}

func (p *Panel) FieldByName(name string) (*Field, bool) {
	if p == nil {
		return nil, false
	}
	return findField(p.Fields, name)
}

// Path expands the {id} placeholder of an endpoint template.
func (p *Panel) Path(template, id string) string {
	return strings.ReplaceAll(template, "{id}", url.PathEscape(id))
}

func (f *Field) SubField(name string) (*Field, bool) {
	if f == nil {
		return nil, false
	}
	return findField(f.Fields, name)
}
