// Package panel is the generic CRUD resource panel. One Panel instance
// exists per descriptor; it owns that descriptor's cache and form and
// reports every outcome through the notifier.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rpgpanel/internal/cache"
	"rpgpanel/internal/client"
	"rpgpanel/internal/config"
	apperrors "rpgpanel/internal/errors"
	"rpgpanel/internal/form"
	"rpgpanel/internal/notify"
	"rpgpanel/internal/resource"
	"rpgpanel/internal/view"
)

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "uninitialized"
	}
}

// API is the HTTP surface a panel needs.
type API interface {
	form.API
	Get(ctx context.Context, path string) (*client.Response, error)
}

type Panel struct {
	desc     *config.Panel
	api      API
	notifier *notify.Notifier
	cache    *cache.Cache

	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	seq     uint64
	loaded  bool
	lastErr error

	// formMu serializes form use between CLI, MCP and apply callers.
	formMu sync.Mutex
	form   *form.Controller
}

// New builds a panel without loading it.
func New(desc *config.Panel, api API, notifier *notify.Notifier) *Panel {
	if notifier == nil {
		notifier = notify.New(0, nil)
	}
	base, cancel := context.WithCancel(context.Background())
	p := &Panel{
		desc:     desc,
		api:      api,
		notifier: notifier,
		cache:    cache.New(desc.IDField),
		base:     base,
		cancel:   cancel,
	}
	p.form = form.New(desc, api, p.cache)
	return p
}

// Open builds a panel and runs its first load right away. The panel is
// returned even when that load fails so the caller can retry.
func Open(ctx context.Context, desc *config.Panel, api API, notifier *notify.Notifier) (*Panel, error) {
	p := New(desc, api, notifier)
	return p, p.Load(ctx)
}

func (p *Panel) Name() string { return p.desc.Name }
func (p *Panel) Descriptor() *config.Panel { return p.desc }
func (p *Panel) Notifier() *notify.Notifier { return p.notifier }

func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err is the error of the last applied load, if it failed.
func (p *Panel) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Load fetches the whole entity set and replaces the cache. Loads may
// overlap; only the response to the most recently issued load is applied
// and older ones are dropped.
func (p *Panel) Load(ctx context.Context) error {
	return p.load(ctx, p.begin())
}

// begin marks a new load as issued and returns its sequence number.
func (p *Panel) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.state = StateLoading
	return p.seq
}

func (p *Panel) load(ctx context.Context, seq uint64) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.base, cancel)
	defer stop()

	records, err := p.fetchAll(ctx)

	p.mu.Lock()
	if seq != p.seq {
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		p.state = StateError
		p.lastErr = err
		p.mu.Unlock()
		p.notifier.Error(p.desc.Name, err)
		return err
	}
	p.cache.ReplaceAll(records)
	p.state = StateReady
	p.loaded = true
	p.lastErr = nil
	p.mu.Unlock()
	return nil
}

// Refresh reloads the panel; the scheduler calls it on every tick.
func (p *Panel) Refresh(ctx context.Context) error {
	return p.Load(ctx)
}

// scoped tags ctx with the panel's rejection message field.
func (p *Panel) scoped(ctx context.Context) context.Context {
	return client.WithMessageField(ctx, p.desc.Envelope.MessageField)
}

func (p *Panel) fetchAll(ctx context.Context) ([]resource.Record, error) {
	resp, err := p.api.Get(p.scoped(ctx), p.desc.Endpoints.List)
	if err != nil {
		return nil, err
	}
	payload, err := resp.Unwrap(p.desc.Envelope)
	if err != nil {
		return nil, err
	}
	records, err := resource.Records(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeServerRejected, "malformed response", err)
	}
	return records, nil
}

// Fetch returns the server's records as sent, duplicates included,
// without touching the cache.
func (p *Panel) Fetch(ctx context.Context) ([]resource.Record, error) {
	records, err := p.fetchAll(ctx)
	if err != nil {
		p.notifier.Error(p.desc.Name, err)
		return nil, err
	}
	return records, nil
}

// Records returns copies of the cached records in server order.
func (p *Panel) Records() []resource.Record {
	list := p.cache.List()
	out := make([]resource.Record, 0, len(list))
	for _, r := range list {
		out = append(out, r.Clone())
	}
	return out
}

// Len is the number of cached records.
func (p *Panel) Len() int { return p.cache.Len() }

// View renders the cached records through filter.
func (p *Panel) View(filter resource.FilterState) view.View {
	p.mu.Lock()
	loaded := p.loaded
	p.mu.Unlock()
	return view.Render(p.cache.List(), filter, view.OptionsFor(p.desc, loaded))
}

// WithForm runs fn with exclusive use of the panel's form controller.
func (p *Panel) WithForm(fn func(*form.Controller) error) error {
	p.formMu.Lock()
	defer p.formMu.Unlock()
	return fn(p.form)
}

// Save submits the open form. On success the panel reloads in full; on
// failure the form stays open and the cache is untouched.
func (p *Panel) Save(ctx context.Context) (resource.Record, error) {
	p.formMu.Lock()
	saved, err := p.form.Submit(p.scoped(ctx))
	p.formMu.Unlock()
	if err != nil {
		p.notifier.Error(p.desc.Name, err)
		return nil, err
	}
	p.notifier.Success(p.desc.Name, fmt.Sprintf("saved %s", saved.ID(p.desc.IDField)))
	_ = p.Load(ctx)
	return saved, nil
}

// SaveRecord creates record, or updates it when its id is cached, through
// the same form path interactive edits use.
func (p *Panel) SaveRecord(ctx context.Context, record resource.Record) (resource.Record, bool, error) {
	id := record.ID(p.desc.IDField)
	_, exists := p.cache.Get(id)

	err := p.WithForm(func(f *form.Controller) error {
		var err error
		if exists {
			err = f.OpenForEdit(id)
		} else {
			err = f.OpenForCreate()
		}
		if err != nil {
			return err
		}
		if err := f.Fill(record); err != nil {
			f.Cancel()
			return err
		}
		return nil
	})
	if err != nil {
		p.notifier.Error(p.desc.Name, err)
		return nil, false, err
	}

	saved, err := p.Save(ctx)
	if err != nil {
		_ = p.WithForm(func(f *form.Controller) error {
			f.Cancel()
			return nil
		})
		return nil, false, err
	}
	return saved, !exists, nil
}

// Delete removes id after confirm approves. It returns false when the
// confirmation was declined.
func (p *Panel) Delete(ctx context.Context, id string, confirm form.Confirmer) (bool, error) {
	p.formMu.Lock()
	deleted, err := p.form.Delete(p.scoped(ctx), id, confirm)
	p.formMu.Unlock()
	if err != nil {
		p.notifier.Error(p.desc.Name, err)
		return false, err
	}
	if !deleted {
		p.notifier.Info(p.desc.Name, fmt.Sprintf("delete of %s cancelled", id))
		return false, nil
	}
	p.cache.Remove(id)
	p.notifier.Success(p.desc.Name, fmt.Sprintf("deleted %s", id))
	_ = p.Load(ctx)
	return true, nil
}

// Record fetches one record from the server.
func (p *Panel) Record(ctx context.Context, id string) (resource.Record, error) {
	record, err := p.fetchOne(ctx, id)
	if err != nil {
		p.notifier.Error(p.desc.Name, err)
		return nil, err
	}
	return record, nil
}

func (p *Panel) fetchOne(ctx context.Context, id string) (resource.Record, error) {
	if p.desc.Endpoints.Get == "" {
		if record, ok := p.cache.Get(id); ok {
			return record, nil
		}
		return nil, apperrors.NotFound(id)
	}
	resp, err := p.api.Get(p.scoped(ctx), p.desc.Path(p.desc.Endpoints.Get, id))
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Metadata["status"] == "404" {
			return nil, apperrors.NotFound(id)
		}
		return nil, err
	}
	payload, err := resp.Unwrap(p.desc.Envelope.ForRecord())
	if err != nil {
		return nil, err
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, apperrors.NotFound(id)
	}
	return resource.Record(obj), nil
}

// Stats is the stats header of a panel.
type Stats struct {
	Server  resource.Record
	Summary []view.Stat
}

// Stats reads the server stats endpoint, when the panel has one, and
// computes the client-side summary over the cache, loading it first if
// needed.
func (p *Panel) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if !p.isLoaded() {
		if err := p.Load(ctx); err != nil {
			return stats, err
		}
	}
	stats.Summary = view.Summarize(p.cache.List(), p.desc.Summary)

	if p.desc.Endpoints.Stats == "" {
		return stats, nil
	}
	resp, err := p.api.Get(p.scoped(ctx), p.desc.Endpoints.Stats)
	if err == nil {
		var payload any
		payload, err = resp.Unwrap(config.Envelope{SuccessField: p.desc.Envelope.SuccessField, MessageField: p.desc.Envelope.MessageField})
		if obj, ok := payload.(map[string]any); ok {
			stats.Server = resource.Record(obj).Clone()
			delete(stats.Server, p.desc.Envelope.SuccessField)
		}
	}
	if err != nil {
		p.notifier.Error(p.desc.Name, err)
		return stats, err
	}
	return stats, nil
}

func (p *Panel) isLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Teardown cancels outstanding requests, drops the cache and discards any
// draft. In-flight loads finishing afterwards are ignored, and a torn down
// panel cannot load again.
func (p *Panel) Teardown() {
	p.mu.Lock()
	p.seq++
	p.state = StateUninitialized
	p.loaded = false
	p.lastErr = nil
	p.mu.Unlock()
	p.cancel()
	p.cache.Clear()
	p.formMu.Lock()
	p.form.Cancel()
	p.formMu.Unlock()
}
