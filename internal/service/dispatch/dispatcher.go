package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"racelink/internal/apiclient"
	"racelink/internal/config"
	"racelink/internal/logging"
	"racelink/internal/metrics"
	"racelink/internal/model"
	"racelink/internal/service/ephemeral"
)

// Action is one of the four mutually exclusive map tap effects
type Action string

const (
	ActionCreateRace     Action = "create_race"
	ActionCreateEvent    Action = "create_event"
	ActionSetDestination Action = "set_destination"
	ActionMarkPolice     Action = "mark_police"
)

// ErrEventFull rejects a join locally before any network call
var ErrEventFull = errors.New("event is full")

// LiveAPI is the write-path slice of the live backend
type LiveAPI interface {
	CreateEvent(ctx context.Context, req apiclient.CreateEventRequest) (model.LiveEvent, error)
	JoinEvent(ctx context.Context, eventID string) error
	LeaveEvent(ctx context.Context, eventID string) error
	SendChallenge(ctx context.Context, req apiclient.ChallengeRequest) (model.RaceChallenge, error)
	RespondChallenge(ctx context.Context, challengeID string, accept bool) error
}

// Refresher triggers an immediate out-of-band sync cycle
type Refresher interface {
	RefreshNow()
}

// EventLookup resolves a synced event by id
type EventLookup interface {
	EventByID(id string) (model.LiveEvent, bool)
}

// TapOptions carries the creation parameters chosen in the tap menu
type TapOptions struct {
	Action          Action           `json:"action"`
	Title           string           `json:"title,omitempty"`
	EventType       model.EventType  `json:"event_type,omitempty"`
	MaxParticipants int              `json:"max_participants,omitempty"`
	DurationMinutes int              `json:"duration_minutes,omitempty"`
	Difficulty      model.Difficulty `json:"difficulty,omitempty"`
	Description     string           `json:"description,omitempty"`
	Address         string           `json:"address,omitempty"`
}

// TapResult describes what a map interaction produced
type TapResult struct {
	Action      Action              `json:"action"`
	Event       *model.LiveEvent    `json:"event,omitempty"`
	Police      *model.PoliceMarker `json:"police,omitempty"`
	Destination *model.Destination  `json:"destination,omitempty"`
}

// Dispatcher turns a single map tap into exactly one workflow. Creation
// never leaves a local trace on failure: the entity exists only once the
// server confirms it, and the creator sees it through an immediate resync.
type Dispatcher struct {
	api        LiveAPI
	refresher  Refresher
	events     EventLookup
	police     *ephemeral.PoliceStore
	dest       *ephemeral.DestinationStore
	challenges *ephemeral.ChallengeStore
	overlay    *Overlay
	log        logging.Logger
	now        func() time.Time

	modeMu     sync.Mutex
	policeMode bool
}

// NewDispatcher wires the dispatcher to its collaborators
func NewDispatcher(api LiveAPI, refresher Refresher, events EventLookup,
	police *ephemeral.PoliceStore, dest *ephemeral.DestinationStore,
	challenges *ephemeral.ChallengeStore, overlay *Overlay, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		api:        api,
		refresher:  refresher,
		events:     events,
		police:     police,
		dest:       dest,
		challenges: challenges,
		overlay:    overlay,
		log:        log,
		now:        time.Now,
	}
}

// ArmPoliceMode makes the next tap create a police marker, bypassing the
// action menu. One shot: the mode disarms after a single marker.
func (d *Dispatcher) ArmPoliceMode() {
	d.modeMu.Lock()
	d.policeMode = true
	d.modeMu.Unlock()
}

// PoliceModeArmed reports whether the short-circuit is active
func (d *Dispatcher) PoliceModeArmed() bool {
	d.modeMu.Lock()
	defer d.modeMu.Unlock()
	return d.policeMode
}

func (d *Dispatcher) disarmIfArmed() bool {
	d.modeMu.Lock()
	defer d.modeMu.Unlock()
	armed := d.policeMode
	d.policeMode = false
	return armed
}

// HandleTap resolves a map interaction to exactly one effect
func (d *Dispatcher) HandleTap(ctx context.Context, coord model.Coordinate, opts TapOptions) (TapResult, error) {
	if d.disarmIfArmed() {
		marker := d.police.Mark(ctx, coord.Latitude, coord.Longitude)
		metrics.MapActions.WithLabelValues(string(ActionMarkPolice), "ok").Inc()
		return TapResult{Action: ActionMarkPolice, Police: &marker}, nil
	}

	switch opts.Action {
	case ActionCreateRace:
		ev, err := d.CreateRaceAt(ctx, coord, opts)
		if err != nil {
			return TapResult{}, err
		}
		return TapResult{Action: ActionCreateRace, Event: &ev}, nil

	case ActionCreateEvent:
		ev, err := d.CreateEventAt(ctx, coord, opts)
		if err != nil {
			return TapResult{}, err
		}
		return TapResult{Action: ActionCreateEvent, Event: &ev}, nil

	case ActionSetDestination:
		dest := model.Destination{Latitude: coord.Latitude, Longitude: coord.Longitude, Address: opts.Address}
		d.dest.Set(dest)
		metrics.MapActions.WithLabelValues(string(ActionSetDestination), "ok").Inc()
		return TapResult{Action: ActionSetDestination, Destination: &dest}, nil

	case ActionMarkPolice:
		marker := d.police.Mark(ctx, coord.Latitude, coord.Longitude)
		metrics.MapActions.WithLabelValues(string(ActionMarkPolice), "ok").Inc()
		return TapResult{Action: ActionMarkPolice, Police: &marker}, nil

	default:
		return TapResult{}, fmt.Errorf("unknown map action %q", opts.Action)
	}
}

// CreateRaceAt submits a custom race at an arbitrary coordinate. Start time
// is pushed out by a fixed lead so other clients' next sync cycle discovers
// the race before it begins.
func (d *Dispatcher) CreateRaceAt(ctx context.Context, coord model.Coordinate, opts TapOptions) (model.LiveEvent, error) {
	req := apiclient.CreateEventRequest{
		Title:           opts.Title,
		Type:            model.EventCustomRace,
		Location:        coord,
		MaxParticipants: opts.MaxParticipants,
		StartTime:       d.now().Add(config.RaceStartLead),
		DurationMinutes: opts.DurationMinutes,
		Difficulty:      opts.Difficulty,
		Description:     opts.Description,
	}
	return d.create(ctx, ActionCreateRace, req)
}

// CreateEventAt submits a custom event (meet, drift comp, ...) with the
// longer event lead time
func (d *Dispatcher) CreateEventAt(ctx context.Context, coord model.Coordinate, opts TapOptions) (model.LiveEvent, error) {
	if !model.KnownEventType(opts.EventType) {
		return model.LiveEvent{}, fmt.Errorf("unknown event type %q", opts.EventType)
	}
	req := apiclient.CreateEventRequest{
		Title:           opts.Title,
		Type:            opts.EventType,
		Location:        coord,
		MaxParticipants: opts.MaxParticipants,
		StartTime:       d.now().Add(config.EventStartLead),
		DurationMinutes: opts.DurationMinutes,
		Difficulty:      opts.Difficulty,
		Description:     opts.Description,
	}
	return d.create(ctx, ActionCreateEvent, req)
}

func (d *Dispatcher) create(ctx context.Context, action Action, req apiclient.CreateEventRequest) (model.LiveEvent, error) {
	ev, err := d.api.CreateEvent(ctx, req)
	if err != nil {
		metrics.MapActions.WithLabelValues(string(action), "error").Inc()
		return model.LiveEvent{}, fmt.Errorf("create %s: %w", action, err)
	}
	metrics.MapActions.WithLabelValues(string(action), "ok").Inc()
	// The creator should see the new entity without waiting a full period
	d.refresher.RefreshNow()
	return ev, nil
}

// Join registers for an event. A full event is rejected locally before any
// network call; a successful write is reflected immediately through the
// overlay until the next sync cycle carries server truth.
func (d *Dispatcher) Join(ctx context.Context, eventID string) error {
	ev, ok := d.events.EventByID(eventID)
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	if ev.Full() {
		return ErrEventFull
	}

	d.overlay.AddJoin(eventID)
	if err := d.api.JoinEvent(ctx, eventID); err != nil {
		d.overlay.RemoveJoin(eventID)
		metrics.MapActions.WithLabelValues("join", "error").Inc()
		return fmt.Errorf("join event: %w", err)
	}
	metrics.MapActions.WithLabelValues("join", "ok").Inc()
	return nil
}

// Leave withdraws from an event
func (d *Dispatcher) Leave(ctx context.Context, eventID string) error {
	if err := d.api.LeaveEvent(ctx, eventID); err != nil {
		metrics.MapActions.WithLabelValues("leave", "error").Inc()
		return fmt.Errorf("leave event: %w", err)
	}
	metrics.MapActions.WithLabelValues("leave", "ok").Inc()
	d.refresher.RefreshNow()
	return nil
}

// Challenge sends a direct race challenge and tracks it locally
func (d *Dispatcher) Challenge(ctx context.Context, targetID string, coord model.Coordinate, raceType model.EventType, distanceMeters float64) (model.RaceChallenge, error) {
	ch, err := d.api.SendChallenge(ctx, apiclient.ChallengeRequest{
		TargetID:       targetID,
		Location:       coord,
		RaceType:       raceType,
		DistanceMeters: distanceMeters,
	})
	if err != nil {
		return model.RaceChallenge{}, fmt.Errorf("send challenge: %w", err)
	}
	d.challenges.Track(ch)
	return ch, nil
}

// RespondChallenge accepts or declines a tracked challenge. Expired
// challenges are rejected locally; local state changes only after the
// server confirms.
func (d *Dispatcher) RespondChallenge(ctx context.Context, challengeID string, accept bool) (model.RaceChallenge, error) {
	if !d.challenges.IsPending(challengeID) {
		return model.RaceChallenge{}, fmt.Errorf("challenge %s is no longer pending", challengeID)
	}
	if err := d.api.RespondChallenge(ctx, challengeID, accept); err != nil {
		return model.RaceChallenge{}, fmt.Errorf("respond to challenge: %w", err)
	}
	return d.challenges.Resolve(challengeID, accept)
}

// VisibleEvents folds the pending mutation overlay into the synced events
func (d *Dispatcher) VisibleEvents(events []model.LiveEvent) []model.LiveEvent {
	return d.overlay.Apply(events)
}
