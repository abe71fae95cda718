package routes

import (
	"time"

	"racelink/internal/apiclient"
	"racelink/internal/logging"
	"racelink/internal/model"
	"racelink/internal/postgres"
	"racelink/internal/service/dispatch"
	"racelink/internal/service/ephemeral"
	"racelink/internal/service/location"
	"racelink/internal/service/presence"
	"racelink/internal/service/sync"
	"racelink/internal/stream"
)

// Deps bundles the services the HTTP handlers operate on
type Deps struct {
	Engine      *sync.Engine
	Dispatcher  *dispatch.Dispatcher
	Tracker     *location.Tracker
	Police      *ephemeral.PoliceStore
	Destination *ephemeral.DestinationStore
	Challenges  *ephemeral.ChallengeStore
	Presence    *presence.Layer
	Routes      *postgres.RouteRepo
	Maps        *apiclient.MapsClient
	Live        *apiclient.Client
	Hub         *stream.Hub
	Log         logging.Logger
}

// MapState is the composed snapshot the map UI renders from. Players and
// events come from the last applied sync cycle, events with the local
// pending mutations layered on top; police markers, challenges and the
// destination are local ephemeral state.
type MapState struct {
	Self        model.LocationSample    `json:"self"`
	Speed       float64                 `json:"display_speed"`
	Players     []model.LivePlayer      `json:"players"`
	Events      []model.LiveEvent       `json:"events"`
	Friends     []model.FriendMapMarker `json:"friends"`
	Police      []model.PoliceMarker    `json:"police"`
	Challenges  []model.RaceChallenge   `json:"challenges"`
	Destination *model.Destination      `json:"destination,omitempty"`
	SyncedAt    time.Time               `json:"synced_at"`
}

// Snapshot composes the current map state from every layer
func (d *Deps) Snapshot() MapState {
	state := MapState{
		Self:       d.Tracker.Latest(),
		Speed:      d.Tracker.DisplaySpeed(),
		Players:    d.Engine.Players(),
		Events:     d.Dispatcher.VisibleEvents(d.Engine.Events()),
		Friends:    d.Presence.Visible(),
		Police:     d.Police.Active(),
		Challenges: d.Challenges.Pending(),
		SyncedAt:   d.Engine.Status().LastSyncAt,
	}
	if dest, ok := d.Destination.Get(); ok {
		state.Destination = &dest
	}
	return state
}
