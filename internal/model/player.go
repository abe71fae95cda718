package model

import "time"

// PlayerStatus represents what a nearby racer is currently doing
type PlayerStatus string

const (
	PlayerOnline PlayerStatus = "online"
	PlayerRacing PlayerStatus = "racing"
	PlayerAway   PlayerStatus = "away"
)

// Vehicle is the car a racer is currently driving
type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Color string `json:"color"`
}

// LivePlayer is a nearby racer as reported by the live API. The collection
// holding these is fully replaced on every sync cycle and never persisted.
type LivePlayer struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Location       LocationSample `json:"location"`
	SpeedMPS       float64        `json:"speed_mps"`
	HeadingDegrees float64        `json:"heading_degrees"`
	IsFriend       bool           `json:"is_friend"`
	Status         PlayerStatus   `json:"status"`
	Vehicle        Vehicle        `json:"vehicle"`
	LastSeen       time.Time      `json:"last_seen"`
}
