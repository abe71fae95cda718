package model

// MapFilters is pure view-state applied client-side after every sync cycle.
// It is never sent upstream except implicitly through the query radius.
type MapFilters struct {
	ShowPlayers     bool        `json:"show_players"`
	ShowRaces       bool        `json:"show_races"`
	ShowEvents      bool        `json:"show_events"`
	ShowFriendsOnly bool        `json:"show_friends_only"`
	EventTypes      []EventType `json:"event_types,omitempty"`
	MaxDistanceKm   float64     `json:"max_distance_km"`
}

// DefaultFilters shows everything within the default radius
func DefaultFilters(radiusKm float64) MapFilters {
	return MapFilters{
		ShowPlayers:   true,
		ShowRaces:     true,
		ShowEvents:    true,
		MaxDistanceKm: radiusKm,
	}
}

// AllowsEventType reports whether an event of type t passes the type filter.
// An empty EventTypes set allows every type.
func (f MapFilters) AllowsEventType(t EventType) bool {
	if len(f.EventTypes) == 0 {
		return true
	}
	for _, allowed := range f.EventTypes {
		if allowed == t {
			return true
		}
	}
	return false
}
