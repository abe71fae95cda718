package sync

import (
	"context"
	"errors"
	"sync"
	"testing"

	"racelink/internal/logging"
	"racelink/internal/model"
	"racelink/internal/spatial"
)

// fakeAPI scripts the three proximity queries
type fakeAPI struct {
	mu      sync.Mutex
	players []model.LivePlayer
	events  []model.LiveEvent
	friends []model.FriendMapMarker

	playersErr error
	eventsErr  error
	friendsErr error
}

func (f *fakeAPI) NearbyPlayers(ctx context.Context, lat, lng, radiusKm float64) ([]model.LivePlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.players, f.playersErr
}

func (f *fakeAPI) NearbyEvents(ctx context.Context, lat, lng, radiusKm float64) ([]model.LiveEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events, f.eventsErr
}

func (f *fakeAPI) FriendMarkers(ctx context.Context) ([]model.FriendMapMarker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.friends, f.friendsErr
}

func (f *fakeAPI) set(fn func(*fakeAPI)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func centerAt(lat, lng float64) func() model.LocationSample {
	return func() model.LocationSample {
		return model.LocationSample{Latitude: lat, Longitude: lng}
	}
}

func player(id string, lat, lng float64) model.LivePlayer {
	return model.LivePlayer{ID: id, Location: model.LocationSample{Latitude: lat, Longitude: lng}}
}

func TestSyncReplacesNotMerges(t *testing.T) {
	api := &fakeAPI{players: []model.LivePlayer{
		player("P1", 37.78, -122.42),
		player("P2", 37.77, -122.41),
	}}
	e := NewEngine(api, centerAt(37.7749, -122.4194), 50, logging.NopLogger{})

	e.SyncNow(context.Background())

	api.set(func(f *fakeAPI) {
		f.players = []model.LivePlayer{
			player("P2", 37.77, -122.41),
			player("P3", 37.76, -122.40),
		}
	})
	e.SyncNow(context.Background())

	got := e.Players()
	if len(got) != 2 {
		t.Fatalf("got %d players, want 2", len(got))
	}
	ids := map[string]bool{got[0].ID: true, got[1].ID: true}
	if !ids["P2"] || !ids["P3"] || ids["P1"] {
		t.Errorf("players = %v, want exactly {P2,P3}", ids)
	}
}

func TestFailedQueryKeepsCollectionAndOthersApply(t *testing.T) {
	api := &fakeAPI{
		players: []model.LivePlayer{player("P1", 37.78, -122.42)},
		events: []model.LiveEvent{{
			ID: "E1", Type: model.EventStreetRace,
			Location: model.Coordinate{Latitude: 37.78, Longitude: -122.42},
		}},
	}
	e := NewEngine(api, centerAt(37.7749, -122.4194), 50, logging.NopLogger{})
	e.SyncNow(context.Background())

	// Players query starts failing while events update
	api.set(func(f *fakeAPI) {
		f.playersErr = errors.New("network down")
		f.events = append(f.events, model.LiveEvent{
			ID: "E2", Type: model.EventStreetRace,
			Location: model.Coordinate{Latitude: 37.775, Longitude: -122.415},
		})
	})
	e.SyncNow(context.Background())

	if got := e.Players(); len(got) != 1 || got[0].ID != "P1" {
		t.Errorf("players after failure = %v, want last known [P1]", got)
	}
	if got := e.Events(); len(got) != 2 {
		t.Errorf("events = %d, want 2 (failure must not wipe other collections)", len(got))
	}

	st := e.Status()
	if st.ConsecutiveFailures != 1 {
		t.Errorf("consecutiveFailures = %d, want 1", st.ConsecutiveFailures)
	}
}

func TestTighteningMaxDistanceFiltersWithoutRefetch(t *testing.T) {
	// P-near is ~2.4 km from center, P-far is ~40 km away
	api := &fakeAPI{players: []model.LivePlayer{
		player("P-near", 37.7955, -122.4058),
		player("P-far", 38.1, -122.7),
	}}
	e := NewEngine(api, centerAt(37.7749, -122.4194), 50, logging.NopLogger{})
	e.SyncNow(context.Background())

	if got := e.Players(); len(got) != 2 {
		t.Fatalf("with 50 km filter got %d players, want 2", len(got))
	}

	// Break the network: the tighter filter must work from cache
	api.set(func(f *fakeAPI) { f.playersErr = errors.New("offline") })

	f := e.Filters()
	f.MaxDistanceKm = 5
	e.SetFilters(f)

	got := e.Players()
	if len(got) != 1 || got[0].ID != "P-near" {
		t.Errorf("with 5 km filter players = %v, want only P-near", got)
	}
}

func TestFriendsOnlyFilter(t *testing.T) {
	api := &fakeAPI{players: []model.LivePlayer{
		{ID: "F", IsFriend: true, Location: model.LocationSample{Latitude: 37.775, Longitude: -122.419}},
		{ID: "S", IsFriend: false, Location: model.LocationSample{Latitude: 37.776, Longitude: -122.418}},
	}}
	e := NewEngine(api, centerAt(37.7749, -122.4194), 50, logging.NopLogger{})
	e.SyncNow(context.Background())

	f := e.Filters()
	f.ShowFriendsOnly = true
	e.SetFilters(f)

	got := e.Players()
	if len(got) != 1 || got[0].ID != "F" {
		t.Errorf("friends-only players = %v, want only F", got)
	}
}

func TestEventTypeFilter(t *testing.T) {
	api := &fakeAPI{events: []model.LiveEvent{
		{ID: "drift", Type: model.EventDriftCompetition, Location: model.Coordinate{Latitude: 37.775, Longitude: -122.419}},
		{ID: "drag", Type: model.EventDragRace, Location: model.Coordinate{Latitude: 37.776, Longitude: -122.418}},
		{ID: "meet", Type: model.EventCarMeet, Location: model.Coordinate{Latitude: 37.777, Longitude: -122.417}},
	}}
	e := NewEngine(api, centerAt(37.7749, -122.4194), 50, logging.NopLogger{})
	e.SyncNow(context.Background())

	f := e.Filters()
	f.EventTypes = []model.EventType{model.EventDriftCompetition}
	e.SetFilters(f)
	if got := e.Events(); len(got) != 1 || got[0].ID != "drift" {
		t.Errorf("type-filtered events = %v, want only drift", got)
	}

	// ShowRaces off hides race variants but keeps meets
	f = model.DefaultFilters(50)
	f.ShowRaces = false
	e.SetFilters(f)
	if got := e.Events(); len(got) != 1 || got[0].ID != "meet" {
		t.Errorf("with races hidden events = %v, want only meet", got)
	}
}

func TestAfterApplyAndExtraEntities(t *testing.T) {
	api := &fakeAPI{players: []model.LivePlayer{player("P1", 37.78, -122.42)}}
	applied := 0
	e := NewEngine(api, centerAt(37.7749, -122.4194), 50, logging.NopLogger{},
		WithAfterApply(func() { applied++ }),
		WithExtraEntities(func() []spatial.EntityRef {
			return []spatial.EntityRef{{Kind: spatial.KindPolice, ID: "cop", Latitude: 37.779, Longitude: -122.418}}
		}),
	)
	e.SyncNow(context.Background())

	if applied != 1 {
		t.Errorf("afterApply fired %d times, want 1", applied)
	}

	refs := e.Viewport(37.7, -122.5, 37.8, -122.4)
	kinds := map[spatial.EntityKind]int{}
	for _, r := range refs {
		kinds[r.Kind]++
	}
	if kinds[spatial.KindPlayer] != 1 || kinds[spatial.KindPolice] != 1 {
		t.Errorf("viewport kinds = %v, want one player and one police marker", kinds)
	}
}

func TestAfterApplySkippedWhenEventsQueryFails(t *testing.T) {
	api := &fakeAPI{
		playersErr: errors.New("network down"),
		eventsErr:  errors.New("network down"),
		friendsErr: errors.New("network down"),
	}
	applied := 0
	e := NewEngine(api, centerAt(37.7749, -122.4194), 50, logging.NopLogger{},
		WithAfterApply(func() { applied++ }))

	e.SyncNow(context.Background())
	if applied != 0 {
		t.Fatalf("afterApply fired %d times on a fully failed cycle, want 0", applied)
	}

	// Events down but players up: still no new events truth, so local
	// pending state must not be dropped
	api.set(func(f *fakeAPI) {
		f.playersErr = nil
		f.players = []model.LivePlayer{player("P1", 37.78, -122.42)}
	})
	e.SyncNow(context.Background())
	if applied != 0 {
		t.Fatalf("afterApply fired %d times while events query failing, want 0", applied)
	}

	api.set(func(f *fakeAPI) {
		f.eventsErr = nil
		f.friendsErr = nil
	})
	e.SyncNow(context.Background())
	if applied != 1 {
		t.Fatalf("afterApply fired %d times after events recovered, want 1", applied)
	}
}

func TestRefreshNowDoesNotBlock(t *testing.T) {
	api := &fakeAPI{}
	e := NewEngine(api, centerAt(0, 0), 50, logging.NopLogger{})

	// Nothing drains the channel; repeated calls must still return
	e.RefreshNow()
	e.RefreshNow()
	e.RefreshNow()

	select {
	case <-e.RefreshC():
	default:
		t.Error("refresh signal should be pending")
	}
}
