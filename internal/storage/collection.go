package storage

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collection holds one server-synchronized entity set. Every sync cycle
// replaces the whole slice; nothing is merged. Requests tag themselves with
// Begin() and only the newest issued request may land, so a slow response
// arriving after a faster, later one is discarded.
type Collection[T any] struct {
	mu         sync.RWMutex
	items      []T
	appliedSeq uint64
	appliedAt  time.Time

	nextSeq atomic.Uint64
}

// NewCollection creates an empty collection
func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{}
}

// Begin issues a sequence number for a fetch about to be sent
func (c *Collection[T]) Begin() uint64 {
	return c.nextSeq.Add(1)
}

// Apply replaces the collection with items if seq is newer than every
// previously applied response. Returns false when the response is stale.
func (c *Collection[T]) Apply(seq uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq <= c.appliedSeq {
		return false
	}
	c.appliedSeq = seq
	c.appliedAt = time.Now()
	c.items = items
	return true
}

// Items returns a copy of the current entity set
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns the current entity count
func (c *Collection[T]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// LastApplied returns when the collection last accepted a response
func (c *Collection[T]) LastApplied() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.appliedAt
}
