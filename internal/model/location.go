package model

import "time"

// Coordinate is a bare lat/lng pair
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationSample is one normalized position fix from the platform.
// Samples are immutable; a new fix supersedes the previous one.
type LocationSample struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Altitude       float64   `json:"altitude,omitempty"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	SpeedMPS       float64   `json:"speed_mps"`
	HeadingDegrees float64   `json:"heading_degrees"`
	Timestamp      time.Time `json:"timestamp"`
}

// Coordinate returns the sample position without the motion fields
func (s LocationSample) Coordinate() Coordinate {
	return Coordinate{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Destination is the single active navigation target of the session.
// Local only, never published upstream.
type Destination struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}
