package form

import (
	"context"
	"errors"
	"testing"

	"rpgpanel/internal/client"
	"rpgpanel/internal/config"
	apperrors "rpgpanel/internal/errors"
	"rpgpanel/internal/resource"
)

type call struct {
	method string
	path   string
	body   any
}

type fakeAPI struct {
	calls []call
	resp  *client.Response
	err   error
}

func (f *fakeAPI) record(method, path string, body any) (*client.Response, error) {
	f.calls = append(f.calls, call{method: method, path: path, body: body})
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &client.Response{Status: 200, Body: map[string]any{"success": true}}, nil
}

func (f *fakeAPI) Post(_ context.Context, path string, body any) (*client.Response, error) {
	return f.record("POST", path, body)
}

func (f *fakeAPI) Put(_ context.Context, path string, body any) (*client.Response, error) {
	return f.record("PUT", path, body)
}

func (f *fakeAPI) Delete(_ context.Context, path string) (*client.Response, error) {
	return f.record("DELETE", path, nil)
}

type mapSource map[string]resource.Record

func (m mapSource) Get(id string) (resource.Record, bool) {
	r, ok := m[id]
	return r.Clone(), ok
}

func dungeonPanel() *config.Panel {
	return &config.Panel{
		Name:    "dungeons",
		Title:   "Dungeons",
		IDField: "dungeonId",
		Endpoints: config.Endpoints{
			Create: "/api/config/dungeons",
			Update: "/api/config/dungeons/{id}",
			Delete: "/api/config/dungeons/{id}",
		},
		Envelope: config.Envelope{SuccessField: "success", MessageField: "message"},
		Fields: []config.Field{
			{Name: "dungeonId", Type: config.FieldString, Required: true},
			{Name: "displayName", Type: config.FieldString, Required: true},
			{Name: "difficulty", Type: config.FieldEnum, Values: []string{"EASY", "NORMAL", "HARD"}},
			{Name: "level", Type: config.FieldInt, Default: "1"},
			{Name: "active", Type: config.FieldBool},
			{Name: "tags", Type: config.FieldList},
			{Name: "waves", Type: config.FieldGroup, Fields: []config.Field{
				{Name: "mobType", Type: config.FieldString, Required: true},
				{Name: "count", Type: config.FieldInt, Default: "5"},
			}},
		},
	}
}

func cachedDungeon() resource.Record {
	return resource.Record{
		"dungeonId":   "crypt",
		"displayName": "Crypt",
		"difficulty":  "HARD",
		"level":       float64(12),
		"active":      true,
		"waves": []any{
			map[string]any{"mobType": "ZOMBIE", "count": float64(8)},
		},
	}
}

func TestOpenForCreateDefaults(t *testing.T) {
	c := New(dungeonPanel(), &fakeAPI{}, mapSource{})
	if err := c.OpenForCreate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	draft := c.Draft()
	if draft.IDLocked {
		t.Fatalf("expected id field unlocked on create")
	}
	if draft.Values["difficulty"] != "EASY" {
		t.Fatalf("expected first enum value, got %v", draft.Values["difficulty"])
	}
	if draft.Values["level"] != float64(1) {
		t.Fatalf("expected declared default level 1, got %v", draft.Values["level"])
	}
	if draft.Values["active"] != false {
		t.Fatalf("expected false bool default")
	}
	if items, ok := draft.Values["waves"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected empty waves, got %v", draft.Values["waves"])
	}
	if err := c.Set("dungeonId", "crypt"); err != nil {
		t.Fatalf("expected id editable on create: %v", err)
	}
}

func TestEditCollectRoundTrip(t *testing.T) {
	source := mapSource{"crypt": cachedDungeon()}
	c := New(dungeonPanel(), &fakeAPI{}, source)
	if err := c.OpenForEdit("crypt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.CollectDraft().Equal(cachedDungeon()) {
		t.Fatalf("expected collected draft to equal cached record, got %v", c.CollectDraft())
	}

	if err := c.SetItem("waves", 0, "count", "20"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !source["crypt"].Equal(cachedDungeon()) {
		t.Fatalf("expected cached record untouched by draft edits")
	}
}

func TestOpenForEditMissing(t *testing.T) {
	c := New(dungeonPanel(), &fakeAPI{}, mapSource{})
	err := c.OpenForEdit("ghost")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if c.Mode() != ModeClosed {
		t.Fatalf("expected form to stay closed")
	}
}

func TestLockedIDRejected(t *testing.T) {
	c := New(dungeonPanel(), &fakeAPI{}, mapSource{"crypt": cachedDungeon()})
	if err := c.OpenForEdit("crypt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Set("dungeonId", "tomb"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := c.Set("dungeonId", "crypt"); err != nil {
		t.Fatalf("expected unchanged id to be accepted: %v", err)
	}
}

func TestSetCoercion(t *testing.T) {
	tests := []struct {
		field   string
		raw     string
		want    any
		wantErr bool
	}{
		{field: "level", raw: "7", want: float64(7)},
		{field: "level", raw: "seven", wantErr: true},
		{field: "level", raw: "1.5", wantErr: true},
		{field: "active", raw: "true", want: true},
		{field: "active", raw: "maybe", wantErr: true},
		{field: "difficulty", raw: "NORMAL", want: "NORMAL"},
		{field: "difficulty", raw: "IMPOSSIBLE", wantErr: true},
		{field: "waves", raw: "x", wantErr: true},
		{field: "notes", raw: "free text", want: "free text"},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.raw, func(t *testing.T) {
			c := New(dungeonPanel(), &fakeAPI{}, mapSource{})
			if err := c.OpenForCreate(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			err := c.Set(tt.field, tt.raw)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c.Draft().Values[tt.field]; got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestListCoercion(t *testing.T) {
	c := New(dungeonPanel(), &fakeAPI{}, mapSource{})
	_ = c.OpenForCreate()
	if err := c.Set("tags", "boss, undead,,"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tags, _ := c.Draft().Values["tags"].([]any)
	if len(tags) != 2 || tags[0] != "boss" || tags[1] != "undead" {
		t.Fatalf("unexpected tags %v", tags)
	}
}

func TestGroupItems(t *testing.T) {
	c := New(dungeonPanel(), &fakeAPI{}, mapSource{})
	_ = c.OpenForCreate()

	for _, mob := range []string{"ZOMBIE", "SKELETON", "SPIDER"} {
		idx, err := c.AddItem("waves")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := c.SetItem("waves", idx, "mobType", mob); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := c.RemoveItem("waves", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waves, _ := c.CollectDraft()["waves"].([]any)
	if len(waves) != 2 {
		t.Fatalf("expected 2 waves, got %d", len(waves))
	}
	first := waves[0].(map[string]any)
	second := waves[1].(map[string]any)
	if first["mobType"] != "ZOMBIE" || second["mobType"] != "SPIDER" {
		t.Fatalf("unexpected wave order %v", waves)
	}
	if first["count"] != float64(5) {
		t.Fatalf("expected sub-field default, got %v", first["count"])
	}
	if err := c.RemoveItem("waves", 5); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for bad index, got %v", err)
	}
	if _, err := c.AddItem("level"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for non-group field, got %v", err)
	}
}

func TestSubmitValidatesBeforeRequest(t *testing.T) {
	api := &fakeAPI{}
	c := New(dungeonPanel(), api, mapSource{})
	_ = c.OpenForCreate()
	_ = c.Set("dungeonId", "crypt")

	_, err := c.Submit(context.Background())
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no request, got %d", len(api.calls))
	}

	_ = c.Set("displayName", "Crypt")
	_, _ = c.AddItem("waves")
	if _, err := c.Submit(context.Background()); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected required sub-field error, got %v", err)
	}
}

func TestSubmitCreateAndUpdate(t *testing.T) {
	api := &fakeAPI{}
	c := New(dungeonPanel(), api, mapSource{"crypt": cachedDungeon()})

	_ = c.OpenForCreate()
	_ = c.Set("dungeonId", "tomb")
	_ = c.Set("displayName", "Tomb")
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mode() != ModeClosed {
		t.Fatalf("expected form closed after save")
	}

	_ = c.OpenForEdit("crypt")
	_ = c.Set("level", "15")
	saved, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved["level"] != float64(15) {
		t.Fatalf("expected saved level 15, got %v", saved["level"])
	}

	if len(api.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(api.calls))
	}
	if api.calls[0].method != "POST" || api.calls[0].path != "/api/config/dungeons" {
		t.Fatalf("unexpected create call %+v", api.calls[0])
	}
	if api.calls[1].method != "PUT" || api.calls[1].path != "/api/config/dungeons/crypt" {
		t.Fatalf("unexpected update call %+v", api.calls[1])
	}
}

func TestSubmitRejectedKeepsFormOpen(t *testing.T) {
	api := &fakeAPI{resp: &client.Response{Status: 200, Body: map[string]any{"success": false, "message": "Dungeon already exists"}}}
	c := New(dungeonPanel(), api, mapSource{})
	_ = c.OpenForCreate()
	_ = c.Set("dungeonId", "crypt")
	_ = c.Set("displayName", "Crypt")

	_, err := c.Submit(context.Background())
	if !errors.Is(err, apperrors.ErrServerRejected) {
		t.Fatalf("expected server rejection, got %v", err)
	}
	if err.Error() != "Dungeon already exists" {
		t.Fatalf("expected server message, got %q", err.Error())
	}
	if c.Mode() != ModeCreate || c.Draft().Values.ID("dungeonId") != "crypt" {
		t.Fatalf("expected draft kept after rejection")
	}
}

func TestDelete(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		api := &fakeAPI{}
		c := New(dungeonPanel(), api, mapSource{})
		decline := ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
		ok, err := c.Delete(context.Background(), "crypt", decline)
		if err != nil || ok {
			t.Fatalf("expected silent abort, got ok=%v err=%v", ok, err)
		}
		if len(api.calls) != 0 {
			t.Fatalf("expected no request after decline")
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		api := &fakeAPI{}
		c := New(dungeonPanel(), api, mapSource{})
		var prompt string
		accept := ConfirmFunc(func(_ context.Context, p string) (bool, error) {
			prompt = p
			return true, nil
		})
		ok, err := c.Delete(context.Background(), "fire crypt", accept)
		if err != nil || !ok {
			t.Fatalf("expected delete, got ok=%v err=%v", ok, err)
		}
		if prompt == "" {
			t.Fatalf("expected confirmation prompt")
		}
		if api.calls[0].method != "DELETE" || api.calls[0].path != "/api/config/dungeons/fire%20crypt" {
			t.Fatalf("unexpected call %+v", api.calls[0])
		}
	})

	t.Run("read only", func(t *testing.T) {
		p := dungeonPanel()
		p.ReadOnly = true
		c := New(p, &fakeAPI{}, mapSource{})
		if _, err := c.Delete(context.Background(), "crypt", Always); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestFill(t *testing.T) {
	c := New(dungeonPanel(), &fakeAPI{}, mapSource{})
	_ = c.OpenForCreate()
	err := c.Fill(resource.Record{
		"dungeonId":   "crypt",
		"displayName": "Crypt",
		"level":       3,
		"difficulty":  "HARD",
		"waves":       []any{map[string]any{"mobType": "ZOMBIE"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Fill(resource.Record{"active": "nope"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
