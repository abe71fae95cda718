package config

import "time"

// Worker intervals
const (
	// SyncInterval defines how often the proximity engine pulls the three
	// nearby collections from the live API
	SyncInterval = 5 * time.Second

	// PresencePublishInterval defines how often the racer's own position is
	// pushed to the live API
	PresencePublishInterval = 10 * time.Second

	// ExpirySweepInterval defines how often expired ephemeral entities are
	// pruned from memory
	ExpirySweepInterval = 30 * time.Second
)

// Ephemeral entity lifetimes
const (
	// PoliceMarkerTTL is the hard lifetime of a police sighting. Liveness is
	// always computed from CreatedAt, the sweep is only an optimization.
	PoliceMarkerTTL = 30 * time.Minute

	// RaceStartLead is added to the creation time of a custom race so other
	// clients can discover it through their next sync cycle before it starts
	RaceStartLead = 5 * time.Minute

	// EventStartLead is the equivalent lead for custom events
	EventStartLead = 10 * time.Minute
)

// Geolocation
const (
	// LocationFixTimeout bounds the one-shot high accuracy position fix
	LocationFixTimeout = 15 * time.Second

	// DefaultLatitude and DefaultLongitude center the map when the platform
	// denies the location permission or the fix times out
	DefaultLatitude  = 37.7749
	DefaultLongitude = -122.4194

	// DefaultRadiusKm is the server-side radius for proximity queries
	DefaultRadiusKm = 50.0
)
