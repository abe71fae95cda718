package presence

import (
	"context"
	"fmt"

	"racelink/internal/logging"
	"racelink/internal/model"
	"racelink/internal/service/dispatch"
)

// FriendSource is the sync engine's friend collection
type FriendSource interface {
	Friends() []model.FriendMapMarker
}

// RaceCreator is the slice of the dispatcher an invite composes with
type RaceCreator interface {
	CreateRaceAt(ctx context.Context, coord model.Coordinate, opts dispatch.TapOptions) (model.LiveEvent, error)
	Challenge(ctx context.Context, targetID string, coord model.Coordinate, raceType model.EventType, distanceMeters float64) (model.RaceChallenge, error)
}

// Layer derives visible friend markers from the synced friend collection.
// Two independent gates: the friend's own location privacy preference, and
// being not offline.
type Layer struct {
	friends    FriendSource
	dispatcher RaceCreator
	log        logging.Logger
}

func NewLayer(friends FriendSource, dispatcher RaceCreator, log logging.Logger) *Layer {
	return &Layer{friends: friends, dispatcher: dispatcher, log: log}
}

// Visible returns the friend markers that should render on the map
func (l *Layer) Visible() []model.FriendMapMarker {
	var out []model.FriendMapMarker
	for _, f := range l.friends.Friends() {
		if !f.ShowLocation {
			continue
		}
		if f.Status == model.FriendOffline {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FriendByID finds a visible friend marker
func (l *Layer) FriendByID(racerID string) (model.FriendMapMarker, bool) {
	for _, f := range l.Visible() {
		if f.RacerID == racerID {
			return f, true
		}
	}
	return model.FriendMapMarker{}, false
}

// InviteToRace creates a custom race at the friend's current position and
// sends an advisory challenge. The race exists whether or not the friend
// ever accepts; a failed challenge send is logged, not fatal.
func (l *Layer) InviteToRace(ctx context.Context, racerID string, opts dispatch.TapOptions) (model.LiveEvent, error) {
	friend, ok := l.FriendByID(racerID)
	if !ok {
		return model.LiveEvent{}, fmt.Errorf("friend %s is not visible on the map", racerID)
	}

	ev, err := l.dispatcher.CreateRaceAt(ctx, friend.Position, opts)
	if err != nil {
		return model.LiveEvent{}, err
	}

	if _, err := l.dispatcher.Challenge(ctx, racerID, friend.Position, model.EventCustomRace, 0); err != nil {
		l.log.Log(logging.LevelWarn, "presence", "race created but invite not delivered",
			map[string]any{"friend": racerID, "event": ev.ID, "error": err.Error()})
	}
	return ev, nil
}
