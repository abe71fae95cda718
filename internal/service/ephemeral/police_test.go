package ephemeral

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"racelink/internal/logging"
)

func testClock(start time.Time) (*time.Time, func() time.Time) {
	t := start
	return &t, func() time.Time { return t }
}

func TestPoliceMarkerExpiresAtTTL(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)
	clock, now := testClock(t0)

	s := NewPoliceStore(nil, logging.NopLogger{})
	s.now = now

	s.Mark(context.Background(), 37.78, -122.42)

	// Present just before the TTL
	*clock = t0.Add(29 * time.Minute)
	if got := s.Active(); len(got) != 1 {
		t.Fatalf("at t0+29min active = %d markers, want 1", len(got))
	}

	// Absent at the TTL plus epsilon, no sweep has run
	*clock = t0.Add(30*time.Minute + time.Second)
	if got := s.Active(); len(got) != 0 {
		t.Fatalf("at t0+30min+eps active = %d markers, want 0", len(got))
	}
}

func TestPoliceSweepPrunesExpired(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)
	clock, now := testClock(t0)

	s := NewPoliceStore(nil, logging.NopLogger{})
	s.now = now

	s.Mark(context.Background(), 37.78, -122.42)
	*clock = t0.Add(10 * time.Minute)
	s.Mark(context.Background(), 37.79, -122.41)

	*clock = t0.Add(31 * time.Minute)
	if removed := s.Sweep(); removed != 1 {
		t.Errorf("sweep removed %d, want 1", removed)
	}
	if got := s.Active(); len(got) != 1 {
		t.Errorf("after sweep active = %d, want 1", len(got))
	}
}

func TestPoliceRestoreSkipsExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t0 := time.Date(2026, 8, 30, 22, 0, 0, 0, time.UTC)
	clock, now := testClock(t0)

	s := NewPoliceStore(rdb, logging.NopLogger{})
	s.now = now

	live := s.Mark(context.Background(), 37.78, -122.42)
	ctx := context.Background()

	// Simulate a suspended client resuming 20 minutes later with an
	// additional marker that has fully expired
	*clock = t0.Add(-40 * time.Minute)
	s.Mark(ctx, 37.0, -122.0)
	*clock = t0.Add(20 * time.Minute)

	restored := NewPoliceStore(rdb, logging.NopLogger{})
	restored.now = now
	if err := restored.Restore(ctx); err != nil {
		t.Fatal(err)
	}

	got := restored.Active()
	if len(got) != 1 || got[0].ID != live.ID {
		t.Errorf("restore recovered %+v, want only the live marker", got)
	}
}
