package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"rpgpanel/internal/store"
)

func newTestStore(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "state", "session.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { c.Close(ctx) })
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return c
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "memory", input: "sqlite://:memory:", expected: ":memory:"},
		{name: "absolute", input: "sqlite:///var/lib/rpg.db", expected: "/var/lib/rpg.db"},
		{name: "relative", input: "sqlite://.rpgpanel/session.db", expected: "./.rpgpanel/session.db"},
		{name: "dot relative", input: "sqlite://./session.db", expected: "./session.db"},
		{name: "escaped", input: "sqlite://my%20dir/s.db", expected: "./my dir/s.db"},
		{name: "query", input: "sqlite://s.db?_pragma=foreign_keys(1)", expected: "./s.db?_pragma=foreign_keys(1)"},
		{name: "wrong scheme", input: "postgres://localhost/db", wantErr: true},
		{name: "empty", input: "sqlite://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	c := newTestStore(t)

	if _, err := c.GetCredential(ctx); !errors.Is(err, store.ErrNoCredential) {
		t.Fatalf("expected no credential, got %v", err)
	}

	saved := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := c.SaveCredential(ctx, store.Credential{Token: "abc", Username: "steve", SavedAt: saved}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.SaveCredential(ctx, store.Credential{Token: "def", Username: "alex", SavedAt: saved}); err != nil {
		t.Fatalf("save again: %v", err)
	}

	cred, err := c.GetCredential(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cred.Token != "def" || cred.Username != "alex" || !cred.SavedAt.Equal(saved) {
		t.Fatalf("unexpected credential %+v", cred)
	}

	if err := c.ClearCredential(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := c.GetCredential(ctx); !errors.Is(err, store.ErrNoCredential) {
		t.Fatalf("expected no credential after clear, got %v", err)
	}
}

func TestManifests(t *testing.T) {
	ctx := context.Background()
	c := newTestStore(t)

	for _, m := range []store.Manifest{
		{Panel: "items", SourceFile: "items/fire_sword.md", RecordID: "fire_sword", SourceHash: "h1"},
		{Panel: "items", SourceFile: "items/oak_shield.md", RecordID: "oak_shield", SourceHash: "h2"},
		{Panel: "npcs", SourceFile: "npcs/bob.md", RecordID: "bob", SourceHash: "h3"},
	} {
		if err := c.PutManifest(ctx, m); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := c.PutManifest(ctx, store.Manifest{Panel: "items", SourceFile: "items/fire_sword.md", RecordID: "fire_sword", SourceHash: "h1b"}); err != nil {
		t.Fatalf("put update: %v", err)
	}

	hashes, err := c.GetManifestHashes(ctx, "items")
	if err != nil {
		t.Fatalf("hashes: %v", err)
	}
	if len(hashes) != 2 || hashes["items/fire_sword.md"] != "h1b" {
		t.Fatalf("unexpected hashes %v", hashes)
	}

	removed, err := c.RemoveStaleManifests(ctx, "items", []string{"items/fire_sword.md"})
	if err != nil {
		t.Fatalf("remove stale: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if n, _ := c.RemoveStaleManifests(ctx, "items", nil); n != 0 {
		t.Fatalf("expected empty list to remove nothing")
	}

	npcs, _ := c.GetManifestHashes(ctx, "npcs")
	if len(npcs) != 1 {
		t.Fatalf("expected other panels untouched, got %v", npcs)
	}
}
