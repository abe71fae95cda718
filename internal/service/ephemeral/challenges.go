package ephemeral

import (
	"fmt"
	"time"

	"racelink/internal/model"
	"racelink/internal/storage"
)

// ChallengeStore tracks outgoing race challenges. A challenge past its
// ExpiresAt is expired no matter what status is stored, even if the server
// has not yet garbage-collected it.
type ChallengeStore struct {
	challenges *storage.MemoryStorage[string, model.RaceChallenge]
	now        func() time.Time
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: storage.NewMemoryStorage[string, model.RaceChallenge](),
		now:        time.Now,
	}
}

// Track records a challenge returned by the live API
func (s *ChallengeStore) Track(c model.RaceChallenge) {
	s.challenges.Set(c.ID, c)
}

// Pending returns the challenges still awaiting a response right now
func (s *ChallengeStore) Pending() []model.RaceChallenge {
	now := s.now()
	var pending []model.RaceChallenge
	s.challenges.ForEach(func(_ string, c model.RaceChallenge) bool {
		if c.PendingAt(now) {
			pending = append(pending, c)
		}
		return true
	})
	return pending
}

// IsPending reports whether a tracked challenge is still awaiting a response
func (s *ChallengeStore) IsPending(id string) bool {
	c, ok := s.challenges.Get(id)
	return ok && c.PendingAt(s.now())
}

// Resolve applies an explicit accept or decline to a tracked challenge.
// Resolving an already expired challenge fails.
func (s *ChallengeStore) Resolve(id string, accept bool) (model.RaceChallenge, error) {
	c, ok := s.challenges.Get(id)
	if !ok {
		return model.RaceChallenge{}, fmt.Errorf("challenge %s not tracked", id)
	}
	if !c.PendingAt(s.now()) {
		return model.RaceChallenge{}, fmt.Errorf("challenge %s is no longer pending", id)
	}
	if accept {
		c.Status = model.ChallengeAccepted
	} else {
		c.Status = model.ChallengeDeclined
	}
	s.challenges.Set(c.ID, c)
	return c, nil
}

// Complete marks an accepted challenge finished; the race subsystem calls
// this when its lifecycle ends
func (s *ChallengeStore) Complete(id string) {
	if c, ok := s.challenges.Get(id); ok && c.Status == model.ChallengeAccepted {
		c.Status = model.ChallengeCompleted
		s.challenges.Set(c.ID, c)
	}
}

// Sweep drops challenges whose lifetime has elapsed
func (s *ChallengeStore) Sweep() int {
	now := s.now()
	var dead []string
	s.challenges.ForEach(func(id string, c model.RaceChallenge) bool {
		if c.ExpiredAt(now) {
			dead = append(dead, id)
		}
		return true
	})
	for _, id := range dead {
		s.challenges.Delete(id)
	}
	return len(dead)
}
