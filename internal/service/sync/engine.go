package sync

import (
	"context"
	"sync"
	"time"

	"racelink/internal/geo"
	"racelink/internal/logging"
	"racelink/internal/metrics"
	"racelink/internal/model"
	"racelink/internal/spatial"
	"racelink/internal/storage"
)

// API is the slice of the live backend the engine pulls from
type API interface {
	NearbyPlayers(ctx context.Context, lat, lng, radiusKm float64) ([]model.LivePlayer, error)
	NearbyEvents(ctx context.Context, lat, lng, radiusKm float64) ([]model.LiveEvent, error)
	FriendMarkers(ctx context.Context) ([]model.FriendMapMarker, error)
}

// Engine periodically replaces the three nearby collections with the
// server's radius-filtered view. The server is the source of truth for
// what is nearby: collections are replaced wholesale, never merged, so
// entities that moved out of radius disappear without tombstones.
//
// Each collection carries its own request sequence; a response lands only
// when no newer response has already been applied, so overlapping cycles
// cannot clobber fresh data with a slow stale reply. A failed query leaves
// its collection at the last known value and never disturbs the other two.
type Engine struct {
	api      API
	center   func() model.LocationSample
	radiusKm float64
	log      logging.Logger

	players *storage.Collection[model.LivePlayer]
	events  *storage.Collection[model.LiveEvent]
	friends *storage.Collection[model.FriendMapMarker]

	filtersMu sync.RWMutex
	filters   model.MapFilters

	index *spatial.Index

	// extraEntities lets the wiring layer contribute non-synced map
	// entities (police markers) to the viewport index
	extraEntities func() []spatial.EntityRef

	// afterApply fires after a cycle lands; the wiring layer uses it to
	// reset the pending mutation overlay and push a stream update
	afterApply func()

	refreshC chan struct{}

	statusMu            sync.Mutex
	lastSyncAt          time.Time
	consecutiveFailures int
}

// Option tweaks engine construction
type Option func(*Engine)

// WithExtraEntities contributes additional entities to the viewport index
func WithExtraEntities(fn func() []spatial.EntityRef) Option {
	return func(e *Engine) { e.extraEntities = fn }
}

// WithAfterApply registers a hook fired after a cycle in which the events
// collection applied a fresh response. Cycles where the events query failed
// or arrived stale do not fire it, so callers may safely discard local
// pending state in the hook: new server truth has always landed first.
func WithAfterApply(fn func()) Option {
	return func(e *Engine) { e.afterApply = fn }
}

// NewEngine creates a sync engine centered on the given position source
func NewEngine(a API, center func() model.LocationSample, radiusKm float64, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		api:      a,
		center:   center,
		radiusKm: radiusKm,
		log:      log,
		players:  storage.NewCollection[model.LivePlayer](),
		events:   storage.NewCollection[model.LiveEvent](),
		friends:  storage.NewCollection[model.FriendMapMarker](),
		filters:  model.DefaultFilters(radiusKm),
		index:    spatial.NewIndex(),
		refreshC: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncNow runs one full cycle: the three queries are issued concurrently so
// combined latency is bounded by the slowest, not the sum.
func (e *Engine) SyncNow(ctx context.Context) {
	center := e.center()

	var wg sync.WaitGroup
	var okMu sync.Mutex
	allOK := true
	eventsApplied := false

	fail := func(collection string, err error) {
		metrics.SyncQueryFailures.WithLabelValues(collection).Inc()
		e.log.Log(logging.LevelWarn, "sync", "query failed, keeping last known collection",
			map[string]any{"collection": collection, "error": err.Error()})
		okMu.Lock()
		allOK = false
		okMu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		seq := e.players.Begin()
		players, err := e.api.NearbyPlayers(ctx, center.Latitude, center.Longitude, e.radiusKm)
		if err != nil {
			fail("players", err)
			return
		}
		if !e.players.Apply(seq, players) {
			metrics.StaleResponses.WithLabelValues("players").Inc()
		}
	}()
	go func() {
		defer wg.Done()
		seq := e.events.Begin()
		events, err := e.api.NearbyEvents(ctx, center.Latitude, center.Longitude, e.radiusKm)
		if err != nil {
			fail("events", err)
			return
		}
		if !e.events.Apply(seq, events) {
			metrics.StaleResponses.WithLabelValues("events").Inc()
			return
		}
		okMu.Lock()
		eventsApplied = true
		okMu.Unlock()
	}()
	go func() {
		defer wg.Done()
		seq := e.friends.Begin()
		friends, err := e.api.FriendMarkers(ctx)
		if err != nil {
			fail("friends", err)
			return
		}
		if !e.friends.Apply(seq, friends) {
			metrics.StaleResponses.WithLabelValues("friends").Inc()
		}
	}()
	wg.Wait()

	e.statusMu.Lock()
	if allOK {
		e.lastSyncAt = time.Now()
		e.consecutiveFailures = 0
		metrics.SyncCycles.WithLabelValues("ok").Inc()
	} else {
		e.consecutiveFailures++
		metrics.SyncCycles.WithLabelValues("degraded").Inc()
	}
	e.statusMu.Unlock()

	e.rebuildIndex()
	if e.afterApply != nil && eventsApplied {
		e.afterApply()
	}
}

// RefreshNow requests an immediate out-of-band cycle from the sync worker
func (e *Engine) RefreshNow() {
	select {
	case e.refreshC <- struct{}{}:
	default:
	}
}

// RefreshC is drained by the sync worker alongside its ticker
func (e *Engine) RefreshC() <-chan struct{} {
	return e.refreshC
}

// SetFilters replaces the view filters. Collections always hold the raw
// server view; filters apply on read, so a filter changed while a query is
// in flight simply shapes the next snapshot.
func (e *Engine) SetFilters(f model.MapFilters) {
	e.filtersMu.Lock()
	defer e.filtersMu.Unlock()
	e.filters = f
}

// Filters returns the current view filters
func (e *Engine) Filters() model.MapFilters {
	e.filtersMu.RLock()
	defer e.filtersMu.RUnlock()
	return e.filters
}

// Players returns the filtered nearby racers
func (e *Engine) Players() []model.LivePlayer {
	f := e.Filters()
	if !f.ShowPlayers {
		return nil
	}
	center := e.center()

	var out []model.LivePlayer
	for _, p := range e.players.Items() {
		if f.ShowFriendsOnly && !p.IsFriend {
			continue
		}
		if !geo.WithinKm(center.Latitude, center.Longitude, p.Location.Latitude, p.Location.Longitude, f.MaxDistanceKm) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Events returns the filtered nearby events. Race variants are gated by
// ShowRaces, meets by ShowEvents.
func (e *Engine) Events() []model.LiveEvent {
	f := e.Filters()
	center := e.center()

	var out []model.LiveEvent
	for _, ev := range e.events.Items() {
		race := ev.Type != model.EventCarMeet
		if race && !f.ShowRaces {
			continue
		}
		if !race && !f.ShowEvents {
			continue
		}
		if !f.AllowsEventType(ev.Type) {
			continue
		}
		if !geo.WithinKm(center.Latitude, center.Longitude, ev.Location.Latitude, ev.Location.Longitude, f.MaxDistanceKm) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Friends returns the raw friend collection; the presence layer derives
// visibility from it
func (e *Engine) Friends() []model.FriendMapMarker {
	return e.friends.Items()
}

// EventByID looks up a synced event
func (e *Engine) EventByID(id string) (model.LiveEvent, bool) {
	for _, ev := range e.events.Items() {
		if ev.ID == id {
			return ev, true
		}
	}
	return model.LiveEvent{}, false
}

// Viewport returns the indexed entities inside a bounding box
func (e *Engine) Viewport(minLat, minLng, maxLat, maxLng float64) []spatial.EntityRef {
	return e.index.Search(minLat, minLng, maxLat, maxLng)
}

// Status reports sync health; staleness is the only degradation signal
type Status struct {
	LastSyncAt          time.Time `json:"last_sync_at"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	PlayerCount         int       `json:"player_count"`
	EventCount          int       `json:"event_count"`
	FriendCount         int       `json:"friend_count"`
}

func (e *Engine) Status() Status {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return Status{
		LastSyncAt:          e.lastSyncAt,
		ConsecutiveFailures: e.consecutiveFailures,
		PlayerCount:         e.players.Count(),
		EventCount:          e.events.Count(),
		FriendCount:         e.friends.Count(),
	}
}

func (e *Engine) rebuildIndex() {
	var refs []spatial.EntityRef
	for _, p := range e.players.Items() {
		refs = append(refs, spatial.EntityRef{
			Kind: spatial.KindPlayer, ID: p.ID,
			Latitude: p.Location.Latitude, Longitude: p.Location.Longitude,
		})
	}
	for _, ev := range e.events.Items() {
		refs = append(refs, spatial.EntityRef{
			Kind: spatial.KindEvent, ID: ev.ID,
			Latitude: ev.Location.Latitude, Longitude: ev.Location.Longitude,
		})
	}
	for _, fr := range e.friends.Items() {
		refs = append(refs, spatial.EntityRef{
			Kind: spatial.KindFriend, ID: fr.RacerID,
			Latitude: fr.Position.Latitude, Longitude: fr.Position.Longitude,
		})
	}
	if e.extraEntities != nil {
		refs = append(refs, e.extraEntities()...)
	}
	e.index.Rebuild(refs)
}
