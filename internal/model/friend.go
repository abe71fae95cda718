package model

import "time"

// FriendStatus represents what a friend is currently doing
type FriendStatus string

const (
	FriendIdle       FriendStatus = "idle"
	FriendRacing     FriendStatus = "racing"
	FriendInRace     FriendStatus = "in_race"
	FriendSpectating FriendStatus = "spectating"
	FriendOffline    FriendStatus = "offline"
)

// FriendProfile carries the display data shown on a friend's marker card
type FriendProfile struct {
	DisplayName string `json:"display_name"`
	TotalRaces  int    `json:"total_races"`
	Wins        int    `json:"wins"`
}

// FriendActivity describes a joinable thing a friend is doing right now
type FriendActivity struct {
	Type      string `json:"type"`
	RaceID    string `json:"race_id,omitempty"`
	EventName string `json:"event_name,omitempty"`
	CanJoin   bool   `json:"can_join"`
}

// FriendMapMarker is one friend on the live map. ShowLocation mirrors the
// friend's own privacy preference; actual marker visibility is derived by the
// presence layer (ShowLocation AND status != offline).
type FriendMapMarker struct {
	RacerID            string          `json:"racer_id"`
	Profile            FriendProfile   `json:"profile"`
	Position           Coordinate      `json:"position"`
	Status             FriendStatus    `json:"status"`
	CurrentActivity    *FriendActivity `json:"current_activity,omitempty"`
	ShowLocation       bool            `json:"show_location"`
	LastLocationUpdate time.Time       `json:"last_location_update"`
}
