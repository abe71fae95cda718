package model

import "time"

// PoliceMarker is a client-local police sighting. The server never tracks
// these; liveness is a pure function of CreatedAt and the marker TTL.
type PoliceMarker struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// LiveAt reports whether the marker is still active at the given instant
func (m PoliceMarker) LiveAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(m.CreatedAt) < ttl
}
