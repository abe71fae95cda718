package ephemeral

import (
	"sync"

	"racelink/internal/model"
)

// DestinationStore holds the single active navigation target. Setting while
// one is already set overwrites it; destinations never round-trip to the
// server.
type DestinationStore struct {
	mu   sync.RWMutex
	dest *model.Destination
}

func NewDestinationStore() *DestinationStore {
	return &DestinationStore{}
}

// Set replaces the active destination
func (s *DestinationStore) Set(dest model.Destination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dest = &dest
}

// Get returns the active destination, if any
func (s *DestinationStore) Get() (model.Destination, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dest == nil {
		return model.Destination{}, false
	}
	return *s.dest, true
}

// Clear removes the active destination
func (s *DestinationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dest = nil
}
