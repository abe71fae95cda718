package apiclient

import (
	"fmt"
	"time"

	"racelink/internal/model"
)

// The collaborator serializes every timestamp as an RFC3339 string. Wire
// structs keep them as strings; parsing happens exactly once, here.

func parseWireTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return t, nil
}

type locationWire struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Altitude  float64 `json:"altitude,omitempty"`
	Accuracy  float64 `json:"accuracy,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Heading   float64 `json:"heading,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

func (w locationWire) toSample() (model.LocationSample, error) {
	ts, err := parseWireTime("location.timestamp", w.Timestamp)
	if err != nil {
		return model.LocationSample{}, err
	}
	return model.LocationSample{
		Latitude:       w.Lat,
		Longitude:      w.Lng,
		Altitude:       w.Altitude,
		AccuracyMeters: w.Accuracy,
		SpeedMPS:       w.Speed,
		HeadingDegrees: w.Heading,
		Timestamp:      ts,
	}, nil
}

type playerWire struct {
	ID       string       `json:"id"`
	Username string       `json:"username"`
	Location locationWire `json:"location"`
	Speed    float64      `json:"speed"`
	Heading  float64      `json:"heading"`
	IsFriend bool         `json:"isFriend"`
	Status   string       `json:"status"`
	Vehicle  struct {
		Make  string `json:"make"`
		Model string `json:"model"`
		Color string `json:"color"`
	} `json:"vehicle"`
	LastSeen string `json:"lastSeen"`
}

func (w playerWire) toModel() (model.LivePlayer, error) {
	loc, err := w.Location.toSample()
	if err != nil {
		return model.LivePlayer{}, err
	}
	lastSeen, err := parseWireTime("player.lastSeen", w.LastSeen)
	if err != nil {
		return model.LivePlayer{}, err
	}
	return model.LivePlayer{
		ID:             w.ID,
		Username:       w.Username,
		Location:       loc,
		SpeedMPS:       w.Speed,
		HeadingDegrees: w.Heading,
		IsFriend:       w.IsFriend,
		Status:         model.PlayerStatus(w.Status),
		Vehicle:        model.Vehicle{Make: w.Vehicle.Make, Model: w.Vehicle.Model, Color: w.Vehicle.Color},
		LastSeen:       lastSeen,
	}, nil
}

type coordWire struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type eventWire struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Type             string      `json:"type"`
	Location         coordWire   `json:"location"`
	StartTime        string      `json:"startTime"`
	DurationMinutes  int         `json:"duration"`
	ParticipantCount int         `json:"participantCount"`
	MaxParticipants  int         `json:"maxParticipants"`
	EntryFee         float64     `json:"entryFee,omitempty"`
	PrizePool        float64     `json:"prizePool,omitempty"`
	Status           string      `json:"status"`
	Difficulty       string      `json:"difficulty"`
	IsCustomLocation bool        `json:"isCustomLocation"`
	SurfaceType      string      `json:"surfaceType,omitempty"`
	Route            []coordWire `json:"route,omitempty"`
	Description      string      `json:"description,omitempty"`
}

func (w eventWire) toModel() (model.LiveEvent, error) {
	start, err := parseWireTime("event.startTime", w.StartTime)
	if err != nil {
		return model.LiveEvent{}, err
	}
	var route []model.Coordinate
	for _, p := range w.Route {
		route = append(route, model.Coordinate{Latitude: p.Lat, Longitude: p.Lng})
	}
	return model.LiveEvent{
		ID:               w.ID,
		Title:            w.Title,
		Type:             model.EventType(w.Type),
		Location:         model.Coordinate{Latitude: w.Location.Lat, Longitude: w.Location.Lng},
		StartTime:        start,
		DurationMinutes:  w.DurationMinutes,
		ParticipantCount: w.ParticipantCount,
		MaxParticipants:  w.MaxParticipants,
		EntryFee:         w.EntryFee,
		PrizePool:        w.PrizePool,
		Status:           model.EventStatus(w.Status),
		Difficulty:       model.Difficulty(w.Difficulty),
		IsCustomLocation: w.IsCustomLocation,
		SurfaceType:      w.SurfaceType,
		Route:            route,
		Description:      w.Description,
	}, nil
}

type friendWire struct {
	RacerID string `json:"racerId"`
	Profile struct {
		DisplayName string `json:"displayName"`
		TotalRaces  int    `json:"totalRaces"`
		Wins        int    `json:"wins"`
	} `json:"profile"`
	Position        coordWire `json:"position"`
	Status          string    `json:"status"`
	CurrentActivity *struct {
		Type      string `json:"type"`
		RaceID    string `json:"raceId,omitempty"`
		EventName string `json:"eventName,omitempty"`
		CanJoin   bool   `json:"canJoin"`
	} `json:"currentActivity,omitempty"`
	ShowLocation       bool   `json:"showLocation"`
	LastLocationUpdate string `json:"lastLocationUpdate"`
}

func (w friendWire) toModel() (model.FriendMapMarker, error) {
	updated, err := parseWireTime("friend.lastLocationUpdate", w.LastLocationUpdate)
	if err != nil {
		return model.FriendMapMarker{}, err
	}
	m := model.FriendMapMarker{
		RacerID: w.RacerID,
		Profile: model.FriendProfile{
			DisplayName: w.Profile.DisplayName,
			TotalRaces:  w.Profile.TotalRaces,
			Wins:        w.Profile.Wins,
		},
		Position:           model.Coordinate{Latitude: w.Position.Lat, Longitude: w.Position.Lng},
		Status:             model.FriendStatus(w.Status),
		ShowLocation:       w.ShowLocation,
		LastLocationUpdate: updated,
	}
	if w.CurrentActivity != nil {
		m.CurrentActivity = &model.FriendActivity{
			Type:      w.CurrentActivity.Type,
			RaceID:    w.CurrentActivity.RaceID,
			EventName: w.CurrentActivity.EventName,
			CanJoin:   w.CurrentActivity.CanJoin,
		}
	}
	return m, nil
}

type challengeWire struct {
	ID             string    `json:"id"`
	ChallengerID   string    `json:"challengerId"`
	TargetID       string    `json:"targetId"`
	Location       coordWire `json:"location"`
	RaceType       string    `json:"raceType"`
	DistanceMeters float64   `json:"distance"`
	Status         string    `json:"status"`
	ExpiresAt      string    `json:"expiresAt"`
	StartTime      string    `json:"startTime,omitempty"`
}

func (w challengeWire) toModel() (model.RaceChallenge, error) {
	expires, err := parseWireTime("challenge.expiresAt", w.ExpiresAt)
	if err != nil {
		return model.RaceChallenge{}, err
	}
	ch := model.RaceChallenge{
		ID:             w.ID,
		ChallengerID:   w.ChallengerID,
		TargetID:       w.TargetID,
		Location:       model.Coordinate{Latitude: w.Location.Lat, Longitude: w.Location.Lng},
		RaceType:       model.EventType(w.RaceType),
		DistanceMeters: w.DistanceMeters,
		Status:         model.ChallengeStatus(w.Status),
		ExpiresAt:      expires,
	}
	if w.StartTime != "" {
		start, err := parseWireTime("challenge.startTime", w.StartTime)
		if err != nil {
			return model.RaceChallenge{}, err
		}
		ch.StartTime = &start
	}
	return ch, nil
}

type presenceLocationWire struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp string  `json:"timestamp"`
}

type presenceWire struct {
	Status   string               `json:"status"`
	Location presenceLocationWire `json:"location"`
}

// CreateEventRequest is the payload for creating a custom race or event.
// IsCustomLocation is always true: any coordinate is a valid venue.
type CreateEventRequest struct {
	Title           string
	Type            model.EventType
	Location        model.Coordinate
	MaxParticipants int
	StartTime       time.Time
	DurationMinutes int
	Difficulty      model.Difficulty
	Description     string
}

type createEventWire struct {
	Title            string    `json:"title"`
	Type             string    `json:"type"`
	Location         coordWire `json:"location"`
	MaxParticipants  int       `json:"maxParticipants"`
	StartTime        string    `json:"startTime"`
	Duration         int       `json:"duration"`
	Difficulty       string    `json:"difficulty,omitempty"`
	Description      string    `json:"description,omitempty"`
	IsCustomLocation bool      `json:"isCustomLocation"`
}

func (r CreateEventRequest) toWire() createEventWire {
	return createEventWire{
		Title:            r.Title,
		Type:             string(r.Type),
		Location:         coordWire{Lat: r.Location.Latitude, Lng: r.Location.Longitude},
		MaxParticipants:  r.MaxParticipants,
		StartTime:        r.StartTime.UTC().Format(time.RFC3339),
		Duration:         r.DurationMinutes,
		Difficulty:       string(r.Difficulty),
		Description:      r.Description,
		IsCustomLocation: true,
	}
}

// ChallengeRequest is the payload for a direct race challenge
type ChallengeRequest struct {
	TargetID       string
	Location       model.Coordinate
	RaceType       model.EventType
	DistanceMeters float64
}

type challengeRequestWire struct {
	TargetID string    `json:"targetId"`
	Location coordWire `json:"location"`
	RaceType string    `json:"raceType"`
	Distance float64   `json:"distance"`
}

func (r ChallengeRequest) toWire() challengeRequestWire {
	return challengeRequestWire{
		TargetID: r.TargetID,
		Location: coordWire{Lat: r.Location.Latitude, Lng: r.Location.Longitude},
		RaceType: string(r.RaceType),
		Distance: r.DistanceMeters,
	}
}

// StatusSummary is the server-side live overview
type StatusSummary struct {
	PlayersOnline int `json:"playersOnline"`
	ActiveEvents  int `json:"activeEvents"`
	ActiveRaces   int `json:"activeRaces"`
}
