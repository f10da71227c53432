package panel

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"rpgpanel/internal/client"
	"rpgpanel/internal/config"
)

func TestRegistry(t *testing.T) {
	b := newBackend()
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	data := []byte(`version: 1
panels:
  - name: items
    id_field: itemId
    endpoints:
      list: /api/config/items
    envelope:
      success_field: success
      payload_key: config
`)
	schema, err := config.ParseSchema(data)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}

	reg := NewRegistry(schema, client.New(srv.URL, time.Second, nil), nil)
	if _, err := reg.Open(context.Background(), "dragons"); err == nil {
		t.Fatalf("expected unknown panel error")
	}

	p, err := reg.Open(context.Background(), "ITEMS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", p.Len())
	}
	again, _ := reg.Open(context.Background(), "items")
	if again != p {
		t.Fatalf("expected the same panel instance")
	}
	if b.lists != 1 {
		t.Fatalf("expected one list call, got %d", b.lists)
	}

	reg.Close()
	if p.State() != StateUninitialized {
		t.Fatalf("expected panel torn down")
	}
}

func TestRegistryPreloadStartsEveryPanel(t *testing.T) {
	b := newBackend()
	srv := httptest.NewServer(b.handler())
	defer srv.Close()

	schema, err := config.ParseSchema([]byte(`version: 1
panels:
  - name: items
    id_field: itemId
    endpoints:
      list: /api/config/items
    envelope:
      success_field: success
      payload_key: config
  - name: relics
    id_field: itemId
    endpoints:
      list: /api/config/items
    envelope:
      success_field: success
      payload_key: config
  - name: broken
    id_field: id
    endpoints:
      list: /api/config/missing
`))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	reg := NewRegistry(schema, client.New(srv.URL, time.Second, nil), nil)
	defer reg.Close()

	if _, err := reg.Preload(context.Background(), "items", "dragons"); err == nil {
		t.Fatalf("expected unknown panel error")
	}

	panels, err := reg.Preload(context.Background(), "items", "relics", "broken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range panels {
		if p.State() == StateUninitialized {
			t.Fatalf("expected %s to start loading right away", p.Name())
		}
	}

	want := map[string]State{"items": StateReady, "relics": StateReady, "broken": StateError}
	deadline := time.Now().Add(2 * time.Second)
	for _, p := range panels {
		for p.State() == StateLoading && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if p.State() != want[p.Name()] {
			t.Fatalf("expected %s to be %s, got %s", p.Name(), want[p.Name()], p.State())
		}
	}
	if panels[1].Len() != 3 {
		t.Fatalf("expected relics loaded without being focused, got %d records", panels[1].Len())
	}
}
