package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"rpgpanel/internal/config"
	"rpgpanel/internal/form"
)

func TestParsePairs(t *testing.T) {
	got, err := parsePairs([]string{"type=WEAPON", " rarity =rare", "lore=a=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["type"] != "WEAPON" || got["rarity"] != "rare" || got["lore"] != "a=b" {
		t.Fatalf("unexpected pairs: %#v", got)
	}

	for _, bad := range []string{"type", "=x"} {
		if _, err := parsePairs([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseItem(t *testing.T) {
	item, err := parseItem("mobs:type=zombie,count=3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Group != "mobs" || item.Values["type"] != "zombie" || item.Values["count"] != "3" {
		t.Fatalf("unexpected item: %#v", item)
	}

	empty, err := parseItem("mobs:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(empty.Values) != 0 {
		t.Fatalf("expected no values, got %#v", empty.Values)
	}

	if _, err := parseItem("type=zombie"); err == nil {
		t.Fatalf("expected error without group")
	}
}

func invasionPanel() *config.Panel {
	return &config.Panel{
		Name:    "invasions",
		Title:   "Invasions",
		IDField: "id",
		Fields: []config.Field{
			{Name: "id", Type: config.FieldString, Required: true},
			{Name: "minLevel", Type: config.FieldInt},
			{Name: "waves", Type: config.FieldGroup, Fields: []config.Field{
				{Name: "mob", Type: config.FieldString},
				{Name: "count", Type: config.FieldInt},
			}},
		},
	}
}

func TestEditFlagsApply(t *testing.T) {
	f := form.New(invasionPanel(), nil, nil)
	if err := f.OpenForCreate(); err != nil {
		t.Fatalf("open: %v", err)
	}

	edits := editFlags{
		Set:   []string{"id=nether_siege", "minLevel=20"},
		Items: []string{"waves:mob=blaze,count=4", "waves:mob=ghast"},
	}
	if err := edits.apply(f); err != nil {
		t.Fatalf("apply: %v", err)
	}

	draft := f.CollectDraft()
	if draft["id"] != "nether_siege" {
		t.Fatalf("expected id nether_siege, got %v", draft["id"])
	}
	if draft["minLevel"] != float64(20) {
		t.Fatalf("expected minLevel 20, got %#v", draft["minLevel"])
	}
	waves, ok := draft["waves"].([]any)
	if !ok || len(waves) != 2 {
		t.Fatalf("expected 2 waves, got %#v", draft["waves"])
	}
	first := waves[0].(map[string]any)
	if first["mob"] != "blaze" || first["count"] != float64(4) {
		t.Fatalf("unexpected first wave: %#v", first)
	}
	second := waves[1].(map[string]any)
	if second["mob"] != "ghast" || second["count"] != float64(0) {
		t.Fatalf("expected defaulted count on second wave: %#v", second)
	}
}

func TestEditFlagsClearReplacesGroup(t *testing.T) {
	f := form.New(invasionPanel(), nil, nil)
	if err := f.OpenForCreate(); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := (editFlags{Items: []string{"waves:mob=zombie"}}).apply(f); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := (editFlags{Clear: []string{"waves"}, Items: []string{"waves:mob=skeleton"}}).apply(f); err != nil {
		t.Fatalf("apply: %v", err)
	}
	waves := f.CollectDraft()["waves"].([]any)
	if len(waves) != 1 || waves[0].(map[string]any)["mob"] != "skeleton" {
		t.Fatalf("expected only skeleton wave, got %#v", waves)
	}
}

func TestEditFlagsRejectsBadNumber(t *testing.T) {
	f := form.New(invasionPanel(), nil, nil)
	if err := f.OpenForCreate(); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := (editFlags{Set: []string{"minLevel=lots"}}).apply(f); err == nil {
		t.Fatalf("expected coercion error")
	}
}

func TestPromptConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			confirm := promptConfirm(strings.NewReader(tt.input), &out)
			got, err := confirm.Confirm(context.Background(), "Delete Items \"fire_sword\"?")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Fatalf("expected prompt, got %q", out.String())
			}
		})
	}
}

func TestPrintRecord(t *testing.T) {
	var out bytes.Buffer
	printRecord(&out, map[string]any{
		"name":  "Fire Sword",
		"power": float64(12),
		"tags":  []any{"fire", "melee"},
	})
	want := "name: Fire Sword\npower: 12\ntags: [\"fire\",\"melee\"]\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}
