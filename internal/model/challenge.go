package model

import "time"

// ChallengeStatus is the stored state of an outgoing race challenge.
// Expiry is never stored: a challenge past ExpiresAt is expired no matter
// what status the server last reported.
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeAccepted  ChallengeStatus = "accepted"
	ChallengeDeclined  ChallengeStatus = "declined"
	ChallengeCompleted ChallengeStatus = "completed"
)

// RaceChallenge is a direct head-to-head invitation to another racer
type RaceChallenge struct {
	ID             string          `json:"id"`
	ChallengerID   string          `json:"challenger_id"`
	TargetID       string          `json:"target_id"`
	Location       Coordinate      `json:"location"`
	RaceType       EventType       `json:"race_type"`
	DistanceMeters float64         `json:"distance_meters"`
	Status         ChallengeStatus `json:"status"`
	ExpiresAt      time.Time       `json:"expires_at"`
	StartTime      *time.Time      `json:"start_time,omitempty"`
}

// PendingAt reports whether the challenge is still awaiting a response at
// the given instant
func (c RaceChallenge) PendingAt(now time.Time) bool {
	return c.Status == ChallengePending && !now.After(c.ExpiresAt)
}

// ExpiredAt reports whether the challenge lifetime has elapsed
func (c RaceChallenge) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
