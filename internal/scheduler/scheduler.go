// Package scheduler owns every polling interval. Panels register once;
// only visible panels are refreshed, and a tick is skipped while the
// previous refresh of the same panel is still running.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Refresher is anything that can reload itself; *panel.Panel qualifies.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type entry struct {
	name     string
	interval time.Duration
	target   Refresher

	visible  atomic.Bool
	inFlight atomic.Bool
	runs     atomic.Int64
	skipped  atomic.Int64

	stop chan struct{}
}

type Scheduler struct {
	logger *log.Logger

	mu      sync.Mutex
	entries map[string]*entry
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

func New(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:  logger,
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a target refreshed every interval while visible. New
// entries start hidden.
func (s *Scheduler) Register(name string, interval time.Duration, target Refresher) error {
	if interval <= 0 {
		return fmt.Errorf("register %s: interval must be positive", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("register %s: already registered", name)
	}
	e := &entry{name: name, interval: interval, target: target, stop: make(chan struct{})}
	s.entries[name] = e
	if s.started {
		s.run(e)
	}
	return nil
}

// Unregister stops polling name.
func (s *Scheduler) Unregister(name string) {
	s.mu.Lock()
	e, ok := s.entries[name]
	delete(s.entries, name)
	s.mu.Unlock()
	if ok {
		close(e.stop)
	}
}

// Start launches one ticker goroutine per registered entry. It returns
// immediately; Stop or cancelling ctx ends polling.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	stop := context.AfterFunc(ctx, s.cancel)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-s.ctx.Done()
		stop()
	}()
	for _, e := range s.entries {
		s.run(e)
	}
}

// run must be called with s.mu held.
func (s *Scheduler) run(e *entry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.trigger(e)
			case <-e.stop:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// Show makes name the only visible entry and refreshes it at once, the
// way switching tabs does.
func (s *Scheduler) Show(name string) error {
	s.mu.Lock()
	target, ok := s.entries[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("show %s: not registered", name)
	}
	for _, e := range s.entries {
		e.visible.Store(e == target)
	}
	s.mu.Unlock()

	s.trigger(target)
	return nil
}

// SetVisible toggles one entry without touching the others.
func (s *Scheduler) SetVisible(name string, visible bool) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("set visibility %s: not registered", name)
	}
	e.visible.Store(visible)
	return nil
}

// trigger starts a refresh of e unless it is hidden or already running.
func (s *Scheduler) trigger(e *entry) {
	if !e.visible.Load() || s.ctx.Err() != nil {
		return
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		e.skipped.Add(1)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer e.inFlight.Store(false)
		e.runs.Add(1)
		if err := e.target.Refresh(s.ctx); err != nil {
			s.logger.Printf("refresh %s: %v", e.name, err)
		}
	}()
}

// Runs reports how many refreshes of name were started and how many ticks
// were skipped because one was still in flight.
func (s *Scheduler) Runs(name string) (runs, skipped int64) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return 0, 0
	}
	return e.runs.Load(), e.skipped.Load()
}

// Stop cancels in-flight refreshes and waits for every goroutine to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}
