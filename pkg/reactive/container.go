// Package reactive provides observable keyed containers.
//
// A [Container] holds a mapping from string ids to records and notifies
// subscribers whenever the mapping changes. It mirrors the writable stores a
// diagram widget reads from: readers take point-in-time snapshots, writers
// replace the whole mapping or a single record, and every write is observed
// as exactly one change event.
//
// # Snapshots
//
// Records are stored by value. [Container.Snapshot] returns a fresh map, and
// a map handed to a subscriber is never written again, so a snapshot never
// changes underneath its reader.
//
// # Batching
//
// [Container.Hold] and [Container.Release] group several writes into one
// change event. Holds nest; the event fires on the outermost Release and only
// if something was written while held.
//
//	c.Hold()
//	c.Set(records)
//	c.Mutate("a", fix)
//	c.Release() // subscribers see one change
package reactive

import (
	"maps"
	"slices"
	"sync"
)

// Subscriber receives the current mapping after each change.
// The map is a private copy owned by the subscriber.
type Subscriber[V any] func(map[string]V)

// Container is an observable mapping from id to record.
//
// The zero value is not usable; use [New]. Container is safe for concurrent
// use. Subscribers are called synchronously, outside the lock, in the order
// they subscribed.
type Container[V any] struct {
	name string

	mu    sync.RWMutex
	items map[string]V
	subs  []*subscription[V]
	held  int
	dirty bool
	owned bool // items is a private copy that may be edited in place
}

type subscription[V any] struct {
	fn Subscriber[V]
}

// New creates an empty container. The name identifies the container in
// change notifications and metrics.
func New[V any](name string) *Container[V] {
	return &Container[V]{name: name, items: make(map[string]V)}
}

// Name returns the container name given to [New].
func (c *Container[V]) Name() string { return c.name }

// Snapshot returns a copy of the current mapping.
func (c *Container[V]) Snapshot() map[string]V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.items)
}

// Get returns the record stored under id.
func (c *Container[V]) Get(id string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	return v, ok
}

// Len returns the number of records.
func (c *Container[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the ids in ascending order.
func (c *Container[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.items))
}

// Set replaces the whole mapping with a copy of m.
// Observers see a single change, never the individual insertions.
func (c *Container[V]) Set(m map[string]V) {
	next := maps.Clone(m)
	if next == nil {
		next = make(map[string]V)
	}
	c.mu.Lock()
	c.items = next
	c.owned = c.held > 0
	c.commitLocked()
}

// Mutate replaces the record under id with fn applied to it.
// It reports false, without calling fn, when id is absent.
func (c *Container[V]) Mutate(id string, fn func(V) V) bool {
	c.mu.Lock()
	cur, ok := c.items[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	if !c.owned {
		// The current map may still be read by a notification in flight.
		c.items = maps.Clone(c.items)
		c.owned = c.held > 0
	}
	c.items[id] = fn(cur)
	c.commitLocked()
	return true
}

// Hold defers change notifications until the matching [Container.Release].
func (c *Container[V]) Hold() {
	c.mu.Lock()
	c.held++
	c.mu.Unlock()
}

// Release ends a [Container.Hold]. The outermost Release emits one change
// event if anything was written while held.
func (c *Container[V]) Release() {
	c.mu.Lock()
	if c.held == 0 {
		c.mu.Unlock()
		return
	}
	c.held--
	if c.held == 0 {
		c.owned = false
	}
	if c.held > 0 || !c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	c.notifyUnlock()
}

// Subscribe registers fn and calls it immediately with the current mapping.
// The returned function removes the subscription; calling it twice is safe.
func (c *Container[V]) Subscribe(fn Subscriber[V]) (unsubscribe func()) {
	sub := &subscription[V]{fn: fn}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	current := maps.Clone(c.items)
	c.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.subs = slices.DeleteFunc(c.subs, func(s *subscription[V]) bool { return s == sub })
			c.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (c *Container[V]) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// commitLocked finishes a write. It must be called with c.mu held and
// always releases it.
func (c *Container[V]) commitLocked() {
	if c.held > 0 {
		c.dirty = true
		c.mu.Unlock()
		return
	}
	c.notifyUnlock()
}

// notifyUnlock copies the subscriber list and current mapping, releases the
// lock, then calls each subscriber with its own copy.
func (c *Container[V]) notifyUnlock() {
	subs := slices.Clone(c.subs)
	items := c.items
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(maps.Clone(items))
	}
}
