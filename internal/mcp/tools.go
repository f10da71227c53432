package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"rpgpanel/internal/config"
	"rpgpanel/internal/form"
	"rpgpanel/internal/resource"
)

type ListPanelsInput struct{}

type PanelRefInput struct {
	Panel string `json:"panel" jsonschema:"panel name, e.g. items or dungeons"`
}

type ListRecordsInput struct {
	Panel   string            `json:"panel" jsonschema:"panel name"`
	Search  string            `json:"search,omitempty" jsonschema:"case-insensitive text matched against id and display fields"`
	Filters map[string]string `json:"filters,omitempty" jsonschema:"exact field=value selections, all must match"`
	Refresh bool              `json:"refresh,omitempty" jsonschema:"reload from the server before listing"`
}

type GetRecordInput struct {
	Panel string `json:"panel" jsonschema:"panel name"`
	ID    string `json:"id" jsonschema:"record identifier"`
}

type SaveRecordInput struct {
	Panel  string         `json:"panel" jsonschema:"panel name"`
	Record map[string]any `json:"record" jsonschema:"record fields; an existing id is updated, a new id is created"`
}

type DeleteRecordInput struct {
	Panel   string `json:"panel" jsonschema:"panel name"`
	ID      string `json:"id" jsonschema:"record identifier"`
	Confirm bool   `json:"confirm" jsonschema:"must be true; deletes are irreversible"`
}

type PanelOutput struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	IDField     string `json:"id_field"`
	ReadOnly    bool   `json:"read_only"`
	Leaderboard string `json:"leaderboard,omitempty"`
}

type ListPanelsOutput struct {
	Panels []PanelOutput `json:"panels"`
}

type FieldOutput struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Values   []string         `json:"values,omitempty"`
	Default  string           `json:"default,omitempty"`
	Required bool             `json:"required,omitempty"`
	Fields   []SubFieldOutput `json:"fields,omitempty"`
}

// SubFieldOutput describes one field of a group entry. Groups do not nest.
type SubFieldOutput struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Values   []string `json:"values,omitempty"`
	Default  string   `json:"default,omitempty"`
	Required bool     `json:"required,omitempty"`
}

type SchemaOutput struct {
	Panel        PanelOutput   `json:"panel"`
	SearchFields []string      `json:"search_fields"`
	FilterFields []string      `json:"filter_fields,omitempty"`
	Fields       []FieldOutput `json:"fields"`
}

type ListRecordsOutput struct {
	Records []map[string]any `json:"records"`
	Shown   int              `json:"shown"`
	Total   int              `json:"total"`
	Message string           `json:"message,omitempty"`
}

type RecordOutput struct {
	Record map[string]any `json:"record"`
}

type SaveRecordOutput struct {
	Record  map[string]any `json:"record"`
	Created bool           `json:"created"`
}

type DeleteRecordOutput struct {
	Deleted bool `json:"deleted"`
}

type StatOutput struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type PanelStatsOutput struct {
	Summary []StatOutput   `json:"summary"`
	Server  map[string]any `json:"server,omitempty"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_panels",
		Description: "List the configured admin panels",
	}, s.handleListPanels)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_schema",
		Description: "Describe the fields of one panel",
	}, s.handleGetSchema)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_records",
		Description: "List a panel's records with optional search and filters",
	}, s.handleListRecords)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_record",
		Description: "Fetch one record from the server",
	}, s.handleGetRecord)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "save_record",
		Description: "Create or update a record",
	}, s.handleSaveRecord)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_record",
		Description: "Delete a record; requires confirm=true",
	}, s.handleDeleteRecord)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "panel_stats",
		Description: "Return a panel's stats header",
	}, s.handlePanelStats)
}

func (s *Server) handleListPanels(ctx context.Context, req *sdk.CallToolRequest, input ListPanelsInput) (*sdk.CallToolResult, ListPanelsOutput, error) {
	out := ListPanelsOutput{Panels: []PanelOutput{}}
	if s.schema == nil {
		return nil, out, nil
	}
	for i := range s.schema.Panels {
		out.Panels = append(out.Panels, panelOutput(&s.schema.Panels[i]))
	}
	return nil, out, nil
}

func (s *Server) handleGetSchema(ctx context.Context, req *sdk.CallToolRequest, input PanelRefInput) (*sdk.CallToolResult, SchemaOutput, error) {
	desc, ok := s.schema.PanelByName(input.Panel)
	if !ok {
		return nil, SchemaOutput{}, fmt.Errorf("unknown panel %q", input.Panel)
	}
	return nil, SchemaOutput{
		Panel:        panelOutput(desc),
		SearchFields: desc.SearchFields,
		FilterFields: desc.FilterFields,
		Fields:       fieldOutputs(desc.Fields),
	}, nil
}

func (s *Server) handleListRecords(ctx context.Context, req *sdk.CallToolRequest, input ListRecordsInput) (*sdk.CallToolResult, ListRecordsOutput, error) {
	p, err := s.panel(ctx, input.Panel)
	if err != nil {
		return nil, ListRecordsOutput{}, err
	}
	if input.Refresh {
		if err := p.Refresh(ctx); err != nil {
			return nil, ListRecordsOutput{}, err
		}
	}

	v := p.View(resource.NewFilter(input.Search, input.Filters))
	out := ListRecordsOutput{
		Records: make([]map[string]any, 0, len(v.Rows)),
		Shown:   len(v.Rows),
		Total:   v.Total,
		Message: v.Message(),
	}
	for _, row := range v.Rows {
		out.Records = append(out.Records, row.Clone())
	}
	return nil, out, nil
}

func (s *Server) handleGetRecord(ctx context.Context, req *sdk.CallToolRequest, input GetRecordInput) (*sdk.CallToolResult, RecordOutput, error) {
	if input.ID == "" {
		return nil, RecordOutput{}, fmt.Errorf("id is required")
	}
	p, err := s.panel(ctx, input.Panel)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	record, err := p.Record(ctx, input.ID)
	if err != nil {
		return nil, RecordOutput{}, err
	}
	return nil, RecordOutput{Record: record}, nil
}

func (s *Server) handleSaveRecord(ctx context.Context, req *sdk.CallToolRequest, input SaveRecordInput) (*sdk.CallToolResult, SaveRecordOutput, error) {
	if len(input.Record) == 0 {
		return nil, SaveRecordOutput{}, fmt.Errorf("record is required")
	}
	p, err := s.panel(ctx, input.Panel)
	if err != nil {
		return nil, SaveRecordOutput{}, err
	}
	saved, created, err := p.SaveRecord(ctx, resource.Record(input.Record))
	if err != nil {
		return nil, SaveRecordOutput{}, err
	}
	return nil, SaveRecordOutput{Record: saved, Created: created}, nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, req *sdk.CallToolRequest, input DeleteRecordInput) (*sdk.CallToolResult, DeleteRecordOutput, error) {
	if input.ID == "" {
		return nil, DeleteRecordOutput{}, fmt.Errorf("id is required")
	}
	p, err := s.panel(ctx, input.Panel)
	if err != nil {
		return nil, DeleteRecordOutput{}, err
	}
	confirm := form.ConfirmFunc(func(context.Context, string) (bool, error) {
		return input.Confirm, nil
	})
	deleted, err := p.Delete(ctx, input.ID, confirm)
	if err != nil {
		return nil, DeleteRecordOutput{}, err
	}
	return nil, DeleteRecordOutput{Deleted: deleted}, nil
}

func (s *Server) handlePanelStats(ctx context.Context, req *sdk.CallToolRequest, input PanelRefInput) (*sdk.CallToolResult, PanelStatsOutput, error) {
	p, err := s.panel(ctx, input.Panel)
	if err != nil {
		return nil, PanelStatsOutput{}, err
	}
	stats, err := p.Stats(ctx)
	if err != nil {
		return nil, PanelStatsOutput{}, err
	}
	out := PanelStatsOutput{Summary: make([]StatOutput, 0, len(stats.Summary)), Server: stats.Server}
	for _, stat := range stats.Summary {
		out.Summary = append(out.Summary, StatOutput{Label: stat.Label, Value: stat.Value})
	}
	return nil, out, nil
}

func (s *Server) panel(ctx context.Context, name string) (Panel, error) {
	if name == "" {
		return nil, fmt.Errorf("panel is required")
	}
	if !s.schema.IsValidPanel(name) {
		return nil, fmt.Errorf("unknown panel %q", name)
	}
	return s.open(ctx, name)
}

func panelOutput(p *config.Panel) PanelOutput {
	return PanelOutput{
		Name:        p.Name,
		Title:       p.Title,
		IDField:     p.IDField,
		ReadOnly:    p.ReadOnly,
		Leaderboard: p.Leaderboard,
	}
}

func fieldOutputs(fields []config.Field) []FieldOutput {
	out := make([]FieldOutput, 0, len(fields))
	for _, field := range fields {
		fo := FieldOutput{
			Name:     field.Name,
			Type:     fieldType(field),
			Values:   field.Values,
			Default:  field.Default,
			Required: field.Required,
		}
		for _, sub := range field.Fields {
			fo.Fields = append(fo.Fields, SubFieldOutput{
				Name:     sub.Name,
				Type:     fieldType(sub),
				Values:   sub.Values,
				Default:  sub.Default,
				Required: sub.Required,
			})
		}
		out = append(out, fo)
	}
	return out
}

func fieldType(field config.Field) string {
	if field.Type == "" {
		return config.FieldString
	}
	return field.Type
}
