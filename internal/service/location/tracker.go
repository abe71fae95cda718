package location

import (
	"context"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"racelink/internal/config"
	"racelink/internal/geo"
	"racelink/internal/logging"
	"racelink/internal/model"
)

// Tracker owns the device position stream. It always holds some position:
// when the platform denies the permission or the fix times out it falls back
// to the default coordinate, so the map can center and the first sync cycle
// can run. While the tracking flag is set every incoming sample is appended
// to the route polyline; the flag gates nothing else.
type Tracker struct {
	source Source
	unit   geo.SpeedUnit
	log    logging.Logger

	mu         sync.RWMutex
	latest     model.LocationSample
	tracking   bool
	route      orb.LineString
	routeStart time.Time

	cancel     context.CancelFunc
	now        func() time.Time
	fixTimeout time.Duration
}

// TrackedRoute is a finished tracking segment
type TrackedRoute struct {
	Line           orb.LineString
	StartedAt      time.Time
	EndedAt        time.Time
	DistanceMeters float64
}

// NewTracker creates a tracker over the given position source
func NewTracker(source Source, unit geo.SpeedUnit, log logging.Logger) *Tracker {
	return &Tracker{
		source:     source,
		unit:       unit,
		log:        log,
		now:        time.Now,
		fixTimeout: config.LocationFixTimeout,
	}
}

// Start obtains an initial fix and begins consuming the position watch.
// Watch errors are logged and non-fatal: the tracker keeps serving the last
// known sample.
func (t *Tracker) Start(ctx context.Context) {
	initial := t.CurrentSample(ctx)
	t.mu.Lock()
	t.latest = initial
	t.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	ch, err := t.source.Watch(watchCtx)
	if err != nil {
		t.log.Log(logging.LevelError, "location", "position watch failed, keeping last known sample",
			map[string]any{"error": err.Error()})
		return
	}

	go func() {
		for sample := range ch {
			t.ingest(sample)
		}
	}()
}

// Stop releases the position watch
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

// CurrentSample performs a one-shot, timeout bounded, high accuracy fix.
// It never fails: on permission denial or timeout it returns the default
// fallback coordinate.
func (t *Tracker) CurrentSample(ctx context.Context) model.LocationSample {
	fixCtx, cancel := context.WithTimeout(ctx, t.fixTimeout)
	defer cancel()

	sample, err := t.source.Current(fixCtx)
	if err != nil {
		t.log.Log(logging.LevelWarn, "location", "position fix failed, using default coordinate",
			map[string]any{"error": err.Error()})
		return t.fallbackSample()
	}
	return normalize(sample)
}

// Latest returns the most recent known sample
func (t *Tracker) Latest() model.LocationSample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.latest.Timestamp.IsZero() {
		return t.fallbackSample()
	}
	return t.latest
}

// DisplaySpeed converts the latest speed sample to the preferred unit
func (t *Tracker) DisplaySpeed() float64 {
	return geo.ConvertSpeed(t.Latest().SpeedMPS, t.unit)
}

// StartTracking begins accumulating the route polyline
func (t *Tracker) StartTracking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tracking {
		return
	}
	t.tracking = true
	t.route = orb.LineString{}
	t.routeStart = t.now()
	if !t.latest.Timestamp.IsZero() {
		t.route = append(t.route, orb.Point{t.latest.Longitude, t.latest.Latitude})
	}
}

// StopTracking ends the segment and returns the accumulated route
func (t *Tracker) StopTracking() TrackedRoute {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracking = false

	line := make(orb.LineString, len(t.route))
	copy(line, t.route)

	return TrackedRoute{
		Line:           line,
		StartedAt:      t.routeStart,
		EndedAt:        t.now(),
		DistanceMeters: lineDistance(line),
	}
}

// Tracking reports whether route accumulation is active
func (t *Tracker) Tracking() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracking
}

// RoutePoints returns a copy of the in-progress polyline
func (t *Tracker) RoutePoints() orb.LineString {
	t.mu.RLock()
	defer t.mu.RUnlock()
	line := make(orb.LineString, len(t.route))
	copy(line, t.route)
	return line
}

func (t *Tracker) ingest(sample model.LocationSample) {
	sample = normalize(sample)
	t.mu.Lock()
	t.latest = sample
	if t.tracking {
		t.route = append(t.route, orb.Point{sample.Longitude, sample.Latitude})
	}
	t.mu.Unlock()
}

func (t *Tracker) fallbackSample() model.LocationSample {
	return model.LocationSample{
		Latitude:  config.DefaultLatitude,
		Longitude: config.DefaultLongitude,
		Timestamp: t.now(),
	}
}

func normalize(s model.LocationSample) model.LocationSample {
	if s.SpeedMPS < 0 {
		s.SpeedMPS = 0
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	return s
}

func lineDistance(line orb.LineString) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += geo.HaversineDistance(line[i-1][1], line[i-1][0], line[i][1], line[i][0])
	}
	return total
}
