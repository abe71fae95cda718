package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"racelink/internal/apiclient"
	"racelink/internal/config"
	"racelink/internal/geo"
	"racelink/internal/logging"
	"racelink/internal/model"
	"racelink/internal/service/dispatch"
	"racelink/internal/service/ephemeral"
	"racelink/internal/service/location"
	"racelink/internal/service/presence"
	"racelink/internal/service/sync"
	"racelink/internal/stream"
)

type fakeLive struct {
	players []model.LivePlayer
	events  []model.LiveEvent
	friends []model.FriendMapMarker
}

func (f *fakeLive) NearbyPlayers(ctx context.Context, lat, lng, radiusKm float64) ([]model.LivePlayer, error) {
	return f.players, nil
}

func (f *fakeLive) NearbyEvents(ctx context.Context, lat, lng, radiusKm float64) ([]model.LiveEvent, error) {
	return f.events, nil
}

func (f *fakeLive) FriendMarkers(ctx context.Context) ([]model.FriendMapMarker, error) {
	return f.friends, nil
}

func (f *fakeLive) CreateEvent(ctx context.Context, req apiclient.CreateEventRequest) (model.LiveEvent, error) {
	return model.LiveEvent{
		ID:        "created-1",
		Title:     req.Title,
		Type:      req.Type,
		Location:  req.Location,
		StartTime: req.StartTime,
	}, nil
}

func (f *fakeLive) JoinEvent(ctx context.Context, eventID string) error  { return nil }
func (f *fakeLive) LeaveEvent(ctx context.Context, eventID string) error { return nil }

func (f *fakeLive) SendChallenge(ctx context.Context, req apiclient.ChallengeRequest) (model.RaceChallenge, error) {
	return model.RaceChallenge{
		ID:        "ch-1",
		TargetID:  req.TargetID,
		Status:    model.ChallengePending,
		ExpiresAt: time.Now().Add(time.Minute),
	}, nil
}

func (f *fakeLive) RespondChallenge(ctx context.Context, challengeID string, accept bool) error {
	return nil
}

func newTestRouter(t *testing.T, live *fakeLive) (*Deps, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.NopLogger{}

	source := location.NewSimSource(
		model.Coordinate{Latitude: config.DefaultLatitude, Longitude: config.DefaultLongitude},
		nil, 0, time.Hour)
	tracker := location.NewTracker(source, geo.UnitMPH, logger)

	police := ephemeral.NewPoliceStore(nil, logger)
	destination := ephemeral.NewDestinationStore()
	challenges := ephemeral.NewChallengeStore()
	overlay := dispatch.NewOverlay()

	deps := &Deps{
		Tracker:     tracker,
		Police:      police,
		Destination: destination,
		Challenges:  challenges,
		Hub:         stream.NewHub(),
		Log:         logger,
	}
	deps.Engine = sync.NewEngine(live, tracker.Latest, config.DefaultRadiusKm, logger)
	deps.Dispatcher = dispatch.NewDispatcher(live, deps.Engine, deps.Engine,
		police, destination, challenges, overlay, logger)
	deps.Presence = presence.NewLayer(deps.Engine, deps.Dispatcher, logger)

	r := gin.New()
	api := r.Group("/api")
	SetupMainHandlers(r.Group(""), deps)
	SetupMapHandlers(api, deps)
	SetupEventHandlers(api, deps)
	SetupDestinationHandlers(api, deps)
	SetupTrackHandlers(api, deps)
	return deps, r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMapStateComposesLayers(t *testing.T) {
	live := &fakeLive{
		players: []model.LivePlayer{{
			ID:       "p1",
			Username: "ghost",
			Location: model.LocationSample{Latitude: config.DefaultLatitude, Longitude: config.DefaultLongitude},
			Status:   model.PlayerOnline,
		}},
		events: []model.LiveEvent{{
			ID:       "e1",
			Title:    "Pier sprint",
			Type:     model.EventStreetRace,
			Location: model.Coordinate{Latitude: config.DefaultLatitude, Longitude: config.DefaultLongitude},
			Status:   model.EventStartingSoon,
		}},
	}
	deps, r := newTestRouter(t, live)
	deps.Engine.SyncNow(context.Background())
	deps.Police.Mark(context.Background(), 37.78, -122.41)

	w := doJSON(t, r, http.MethodGet, "/api/map/state", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("state status = %d", w.Code)
	}

	var state MapState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(state.Players) != 1 || state.Players[0].ID != "p1" {
		t.Fatalf("players = %+v", state.Players)
	}
	if len(state.Events) != 1 || state.Events[0].ID != "e1" {
		t.Fatalf("events = %+v", state.Events)
	}
	if len(state.Police) != 1 {
		t.Fatalf("police = %+v", state.Police)
	}
}

func TestMapStateGeoJSONFeatureKinds(t *testing.T) {
	live := &fakeLive{
		players: []model.LivePlayer{{
			ID:       "p1",
			Location: model.LocationSample{Latitude: config.DefaultLatitude, Longitude: config.DefaultLongitude},
		}},
		friends: []model.FriendMapMarker{{
			RacerID:      "f1",
			Profile:      model.FriendProfile{DisplayName: "nitro"},
			Position:     model.Coordinate{Latitude: config.DefaultLatitude, Longitude: config.DefaultLongitude},
			Status:       model.FriendIdle,
			ShowLocation: true,
		}},
	}
	deps, r := newTestRouter(t, live)
	deps.Engine.SyncNow(context.Background())

	w := doJSON(t, r, http.MethodGet, "/api/map/state.geojson", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("geojson status = %d", w.Code)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("decode feature collection: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Fatalf("type = %q", fc.Type)
	}
	// Self, one player and one friend
	if len(fc.Features) != 3 {
		t.Fatalf("features = %d", len(fc.Features))
	}
	names := map[string]string{}
	for _, f := range fc.Features {
		kind, _ := f.Properties["kind"].(string)
		if name, ok := f.Properties["username"].(string); ok {
			names[kind] = name
		}
	}
	if names["friend"] != "nitro" {
		t.Fatalf("friend username = %q, want %q", names["friend"], "nitro")
	}
}

func TestViewportRequiresBounds(t *testing.T) {
	_, r := newTestRouter(t, &fakeLive{})

	w := doJSON(t, r, http.MethodGet, "/api/map/viewport?min_lat=1&min_lng=2", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestTapWithPoliceModeArmed(t *testing.T) {
	deps, r := newTestRouter(t, &fakeLive{})

	w := doJSON(t, r, http.MethodPost, "/api/map/police-mode", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("arm status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/map/tap", map[string]any{
		"latitude":  37.78,
		"longitude": -122.41,
		"options":   map[string]any{"action": "create_race"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("tap status = %d", w.Code)
	}

	var result dispatch.TapResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode tap result: %v", err)
	}
	if result.Action != dispatch.ActionMarkPolice || result.Police == nil {
		t.Fatalf("result = %+v", result)
	}
	if len(deps.Police.Active()) != 1 {
		t.Fatalf("expected one police marker")
	}
}

func TestJoinFullEventConflicts(t *testing.T) {
	live := &fakeLive{
		events: []model.LiveEvent{{
			ID:               "full-1",
			Type:             model.EventCarMeet,
			Location:         model.Coordinate{Latitude: config.DefaultLatitude, Longitude: config.DefaultLongitude},
			ParticipantCount: 8,
			MaxParticipants:  8,
		}},
	}
	deps, r := newTestRouter(t, live)
	deps.Engine.SyncNow(context.Background())

	w := doJSON(t, r, http.MethodPost, "/api/events/full-1/join", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestFiltersRoundTrip(t *testing.T) {
	deps, r := newTestRouter(t, &fakeLive{})

	filters := model.DefaultFilters(5)
	filters.ShowRaces = false
	w := doJSON(t, r, http.MethodPut, "/api/map/filters", filters)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d", w.Code)
	}

	got := deps.Engine.Filters()
	if got.ShowRaces || got.MaxDistanceKm != 5 {
		t.Fatalf("filters = %+v", got)
	}

	w = doJSON(t, r, http.MethodPut, "/api/map/filters", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad payload status = %d", w.Code)
	}
}

func TestDestinationLifecycle(t *testing.T) {
	_, r := newTestRouter(t, &fakeLive{})

	w := doJSON(t, r, http.MethodGet, "/api/destination", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty get status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/destination", map[string]any{
		"latitude":  37.8,
		"longitude": -122.4,
		"address":   "Marina Blvd",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/destination", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var dest model.Destination
	if err := json.Unmarshal(w.Body.Bytes(), &dest); err != nil {
		t.Fatalf("decode destination: %v", err)
	}
	if dest.Address != "Marina Blvd" {
		t.Fatalf("destination = %+v", dest)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/destination", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/destination", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("cleared get status = %d", w.Code)
	}
}

func TestRouteHistoryWithoutStorage(t *testing.T) {
	_, r := newTestRouter(t, &fakeLive{})

	w := doJSON(t, r, http.MethodGet, "/api/track/history", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	_, r := newTestRouter(t, &fakeLive{})

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
