package panel

import (
	"context"
	"fmt"
	"sync"

	"rpgpanel/internal/config"
	"rpgpanel/internal/notify"
)

// Registry opens one Panel per descriptor on first use and keeps it.
type Registry struct {
	schema   *config.Schema
	api      API
	notifier *notify.Notifier

	mu     sync.Mutex
	panels map[string]*Panel
}

func NewRegistry(schema *config.Schema, api API, notifier *notify.Notifier) *Registry {
	if notifier == nil {
		notifier = notify.New(0, nil)
	}
	return &Registry{
		schema:   schema,
		api:      api,
		notifier: notifier,
		panels:   make(map[string]*Panel),
	}
}

func (r *Registry) Schema() *config.Schema { return r.schema }
func (r *Registry) Notifier() *notify.Notifier { return r.notifier }

// Panel returns the named panel without loading it.
func (r *Registry) Panel(name string) (*Panel, error) {
	desc, ok := r.schema.PanelByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown panel %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.panels[desc.Name]; ok {
		return p, nil
	}
	p := New(desc, r.api, r.notifier)
	r.panels[desc.Name] = p
	return p, nil
}

// Open returns the named panel, loading it if it has not loaded yet. A
// panel left in the error state is retried.
func (r *Registry) Open(ctx context.Context, name string) (*Panel, error) {
	p, err := r.Panel(name)
	if err != nil {
		return nil, err
	}
	if p.State() != StateReady {
		if err := p.Load(ctx); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Preload resolves every name, then starts the first load of each panel
// that is not ready without waiting for it. Panels come back already in
// the loading state; failures land in their error state and the notifier.
func (r *Registry) Preload(ctx context.Context, names ...string) ([]*Panel, error) {
	panels := make([]*Panel, 0, len(names))
	for _, name := range names {
		p, err := r.Panel(name)
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	for _, p := range panels {
		switch p.State() {
		case StateReady, StateLoading:
			continue
		}
		seq := p.begin()
		go func() { _ = p.load(ctx, seq) }()
	}
	return panels, nil
}

// Close tears down every panel opened so far.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, p := range r.panels {
		p.Teardown()
		delete(r.panels, name)
	}
}
