package model

import "time"

// EventType is the closed set of race/event variants
type EventType string

const (
	EventDragRace         EventType = "drag_race"
	EventStreetRace       EventType = "street_race"
	EventTimeTrial        EventType = "time_trial"
	EventDriftCompetition EventType = "drift_competition"
	EventCarMeet          EventType = "car_meet"
	EventCustomRace       EventType = "custom_race"
)

// EventStyle drives marker rendering for an event type
type EventStyle struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// eventStyles is the explicit lookup table over the closed variant set.
// Adding a type without a style entry falls back to the custom race style.
var eventStyles = map[EventType]EventStyle{
	EventDragRace:         {Icon: "drag", Color: "#e74c3c"},
	EventStreetRace:       {Icon: "street", Color: "#e67e22"},
	EventTimeTrial:        {Icon: "clock", Color: "#3498db"},
	EventDriftCompetition: {Icon: "drift", Color: "#9b59b6"},
	EventCarMeet:          {Icon: "meet", Color: "#2ecc71"},
	EventCustomRace:       {Icon: "flag", Color: "#f1c40f"},
}

// StyleFor returns the rendering style for an event type
func StyleFor(t EventType) EventStyle {
	if s, ok := eventStyles[t]; ok {
		return s
	}
	return eventStyles[EventCustomRace]
}

// KnownEventType reports whether t is one of the closed variants
func KnownEventType(t EventType) bool {
	_, ok := eventStyles[t]
	return ok
}

// EventStatus represents the lifecycle phase of an event
type EventStatus string

const (
	EventStartingSoon EventStatus = "starting_soon"
	EventActive       EventStatus = "active"
	EventFinished     EventStatus = "finished"
)

// Difficulty buckets an event by expected skill
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyExpert       Difficulty = "expert"
)

// LiveEvent is a nearby event as reported by the live API. ParticipantCount
// may be optimistically bumped through the pending mutation overlay until the
// next sync cycle restores server truth.
type LiveEvent struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Type             EventType    `json:"type"`
	Location         Coordinate   `json:"location"`
	StartTime        time.Time    `json:"start_time"`
	DurationMinutes  int          `json:"duration_minutes"`
	ParticipantCount int          `json:"participant_count"`
	MaxParticipants  int          `json:"max_participants"`
	EntryFee         float64      `json:"entry_fee,omitempty"`
	PrizePool        float64      `json:"prize_pool,omitempty"`
	Status           EventStatus  `json:"status"`
	Difficulty       Difficulty   `json:"difficulty"`
	IsCustomLocation bool         `json:"is_custom_location"`
	SurfaceType      string       `json:"surface_type,omitempty"`
	Route            []Coordinate `json:"route,omitempty"`
	Description      string       `json:"description,omitempty"`
}

// Full reports whether the event has no open slots left
func (e LiveEvent) Full() bool {
	return e.MaxParticipants > 0 && e.ParticipantCount >= e.MaxParticipants
}
