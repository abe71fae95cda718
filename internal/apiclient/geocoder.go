package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"racelink/internal/model"
	"racelink/internal/util"
)

// MapsClient is the external mapping collaborator: reverse geocoding and
// turn-by-turn directions. Routing itself happens on the provider side; this
// client only decodes the result.
type MapsClient struct {
	client *Client
}

// NewMapsClient creates a mapping collaborator client
func NewMapsClient(baseURL, token string) *MapsClient {
	return &MapsClient{client: NewClient(baseURL, token)}
}

// ReverseGeocode resolves a coordinate into a human readable address
func (m *MapsClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var out struct {
		Address string `json:"address"`
	}
	if err := m.client.do(ctx, http.MethodGet, "/geocode/reverse", q, nil, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Address), nil
}

// Directions is a decoded route between two coordinates
type Directions struct {
	Points         []model.Coordinate
	DistanceMeters float64
	Duration       time.Duration
}

// GetDirections asks the provider for a route and decodes its polyline
func (m *MapsClient) GetDirections(ctx context.Context, from, to model.Coordinate, mode string) (Directions, error) {
	q := url.Values{}
	q.Set("origin_lat", strconv.FormatFloat(from.Latitude, 'f', -1, 64))
	q.Set("origin_lng", strconv.FormatFloat(from.Longitude, 'f', -1, 64))
	q.Set("dest_lat", strconv.FormatFloat(to.Latitude, 'f', -1, 64))
	q.Set("dest_lng", strconv.FormatFloat(to.Longitude, 'f', -1, 64))
	q.Set("mode", mode)

	var out struct {
		Polyline        string  `json:"polyline"`
		DistanceMeters  float64 `json:"distanceMeters"`
		DurationSeconds float64 `json:"durationSeconds"`
	}
	if err := m.client.do(ctx, http.MethodGet, "/directions", q, nil, &out); err != nil {
		return Directions{}, err
	}

	decoded := util.DecodePolyline(out.Polyline)
	points := make([]model.Coordinate, 0, len(decoded))
	for _, p := range decoded {
		points = append(points, model.Coordinate{Latitude: p[0], Longitude: p[1]})
	}
	return Directions{
		Points:         points,
		DistanceMeters: out.DistanceMeters,
		Duration:       time.Duration(out.DurationSeconds * float64(time.Second)),
	}, nil
}
