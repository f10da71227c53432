// Package cache keeps the last-fetched records of one panel, keyed by id.
package cache

import (
	"sync"

	"rpgpanel/internal/resource"
)

// Cache maps record ids to records and remembers server order. It holds
// the whole entity set of one panel; there is no eviction.
type Cache struct {
	idField string

	mu      sync.RWMutex
	records map[string]resource.Record
	order   []string
}

func New(idField string) *Cache {
	return &Cache{
		idField: idField,
		records: make(map[string]resource.Record),
	}
}

// ReplaceAll swaps the whole set. A duplicated id keeps its first position
// and its last value; records without an id are dropped.
func (c *Cache) ReplaceAll(records []resource.Record) {
	next := make(map[string]resource.Record, len(records))
	order := make([]string, 0, len(records))
	for _, record := range records {
		id := record.ID(c.idField)
		if id == "" {
			continue
		}
		if _, seen := next[id]; !seen {
			order = append(order, id)
		}
		next[id] = record
	}

	c.mu.Lock()
	c.records = next
	c.order = order
	c.mu.Unlock()
}

// Get returns a copy of the record stored under id.
func (c *Cache) Get(id string) (resource.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[id]
	if !ok {
		return nil, false
	}
	return record.Clone(), true
}

// Upsert replaces the record with the same id in place, or appends it.
func (c *Cache) Upsert(record resource.Record) bool {
	id := record.ID(c.idField)
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		c.order = append(c.order, id)
	}
	c.records[id] = record
	return true
}

// Remove deletes id and reports whether it was present.
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		return false
	}
	delete(c.records, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the records in server order.
func (c *Cache) List() []resource.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]resource.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id])
	}
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Clear drops every record; used on panel teardown.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.records = make(map[string]resource.Record)
	c.order = nil
	c.mu.Unlock()
}
