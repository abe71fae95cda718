package dispatch

import (
	"sync"

	"racelink/internal/model"
)

// Overlay holds pending local mutations applied on top of the synced
// collections: optimistic changes the server has not confirmed into a sync
// response yet. The next applied cycle carries server truth, so the overlay
// is reset wholesale when one lands: reconciled if the server saw the
// mutation, rolled back if it did not.
type Overlay struct {
	mu    sync.Mutex
	joins map[string]int
}

func NewOverlay() *Overlay {
	return &Overlay{joins: make(map[string]int)}
}

// AddJoin records an optimistic participant increment for an event
func (o *Overlay) AddJoin(eventID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.joins[eventID]++
}

// RemoveJoin rolls back an optimistic increment after a failed write
func (o *Overlay) RemoveJoin(eventID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.joins[eventID] > 1 {
		o.joins[eventID]--
	} else {
		delete(o.joins, eventID)
	}
}

// Reset drops every pending mutation; called when a sync cycle lands
func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.joins = make(map[string]int)
}

// Apply returns the events with pending mutations folded in
func (o *Overlay) Apply(events []model.LiveEvent) []model.LiveEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.joins) == 0 {
		return events
	}
	out := make([]model.LiveEvent, len(events))
	copy(out, events)
	for i := range out {
		if n, ok := o.joins[out[i].ID]; ok {
			out[i].ParticipantCount += n
		}
	}
	return out
}
