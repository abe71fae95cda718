package location

import (
	"context"
	"math"
	"sync"
	"time"

	"racelink/internal/geo"
	"racelink/internal/model"
)

// Source abstracts the platform position provider. Current is a one-shot
// high accuracy fix; Watch is the continuous stream. Implementations must
// respect context cancellation on both.
type Source interface {
	Current(ctx context.Context) (model.LocationSample, error)
	Watch(ctx context.Context) (<-chan model.LocationSample, error)
}

// SimSource is a simulated position provider for development: it drives a
// point along a list of waypoints at a fixed speed, emitting a sample per
// tick. Useful when no device GPS is available.
type SimSource struct {
	mu        sync.Mutex
	position  model.Coordinate
	waypoints []model.Coordinate
	nextIdx   int
	speedMPS  float64
	interval  time.Duration
}

// NewSimSource creates a simulated source starting at the given coordinate
func NewSimSource(start model.Coordinate, waypoints []model.Coordinate, speedMPS float64, interval time.Duration) *SimSource {
	return &SimSource{
		position:  start,
		waypoints: waypoints,
		speedMPS:  speedMPS,
		interval:  interval,
	}
}

func (s *SimSource) Current(ctx context.Context) (model.LocationSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleLocked(), nil
}

func (s *SimSource) Watch(ctx context.Context) (<-chan model.LocationSample, error) {
	ch := make(chan model.LocationSample, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				s.advanceLocked()
				sample := s.sampleLocked()
				s.mu.Unlock()
				select {
				case ch <- sample:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func (s *SimSource) sampleLocked() model.LocationSample {
	return model.LocationSample{
		Latitude:       s.position.Latitude,
		Longitude:      s.position.Longitude,
		AccuracyMeters: 5,
		SpeedMPS:       s.speedMPS,
		HeadingDegrees: s.headingLocked(),
		Timestamp:      time.Now(),
	}
}

func (s *SimSource) advanceLocked() {
	if s.nextIdx >= len(s.waypoints) {
		return
	}
	target := s.waypoints[s.nextIdx]
	step := s.speedMPS * s.interval.Seconds()
	next := geo.MoveToward(s.position.Latitude, s.position.Longitude,
		target.Latitude, target.Longitude, step)
	s.position = model.Coordinate{Latitude: next[0], Longitude: next[1]}

	if s.position == target {
		s.nextIdx++
	}
}

func (s *SimSource) headingLocked() float64 {
	if s.nextIdx >= len(s.waypoints) {
		return 0
	}
	target := s.waypoints[s.nextIdx]
	dLat := target.Latitude - s.position.Latitude
	dLng := target.Longitude - s.position.Longitude
	deg := math.Atan2(dLng, dLat) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}
