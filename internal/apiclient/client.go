package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"racelink/internal/model"
)

// Client talks to the collaborator live API: JSON over HTTPS with bearer
// token authentication. Every timestamp on the wire is a serialized string
// and is parsed at this boundary before anything compares it.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a live API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// buildURL constructs a properly formatted URL with the given endpoint and URI
func buildURL(endpoint string, uri string) string {
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return "https://" + endpoint + uri
	}
	return endpoint + uri
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	reqURL := buildURL(c.baseURL, path)
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status code %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func radiusQuery(lat, lng, radiusKm float64) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	return q
}

// NearbyPlayers returns the racers currently inside the radius
func (c *Client) NearbyPlayers(ctx context.Context, lat, lng, radiusKm float64) ([]model.LivePlayer, error) {
	var wire []playerWire
	if err := c.do(ctx, http.MethodGet, "/live/players", radiusQuery(lat, lng, radiusKm), nil, &wire); err != nil {
		return nil, err
	}
	players := make([]model.LivePlayer, 0, len(wire))
	for _, w := range wire {
		p, err := w.toModel()
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// NearbyEvents returns the events currently inside the radius
func (c *Client) NearbyEvents(ctx context.Context, lat, lng, radiusKm float64) ([]model.LiveEvent, error) {
	var wire []eventWire
	if err := c.do(ctx, http.MethodGet, "/live/events", radiusQuery(lat, lng, radiusKm), nil, &wire); err != nil {
		return nil, err
	}
	events := make([]model.LiveEvent, 0, len(wire))
	for _, w := range wire {
		e, err := w.toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// FriendMarkers returns the map markers of the racer's social graph
func (c *Client) FriendMarkers(ctx context.Context) ([]model.FriendMapMarker, error) {
	var wire []friendWire
	if err := c.do(ctx, http.MethodGet, "/friends/map-markers", nil, nil, &wire); err != nil {
		return nil, err
	}
	friends := make([]model.FriendMapMarker, 0, len(wire))
	for _, w := range wire {
		f, err := w.toModel()
		if err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, nil
}

// PublishPresence pushes the racer's own status and position
func (c *Client) PublishPresence(ctx context.Context, status model.PlayerStatus, s model.LocationSample) error {
	body := presenceWire{
		Status: string(status),
		Location: presenceLocationWire{
			Lat:       s.Latitude,
			Lng:       s.Longitude,
			Speed:     s.SpeedMPS,
			Heading:   s.HeadingDegrees,
			Timestamp: s.Timestamp.UTC().Format(time.RFC3339),
		},
	}
	return c.do(ctx, http.MethodPost, "/live/presence", nil, body, nil)
}

// CreateEvent submits a new custom race or event at an arbitrary coordinate
func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (model.LiveEvent, error) {
	var wire eventWire
	if err := c.do(ctx, http.MethodPost, "/live/events/create", nil, req.toWire(), &wire); err != nil {
		return model.LiveEvent{}, err
	}
	return wire.toModel()
}

// JoinEvent registers the racer as a participant
func (c *Client) JoinEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/live/events/%s/join", eventID), nil, nil, nil)
}

// LeaveEvent removes the racer from the participant list
func (c *Client) LeaveEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/live/events/%s/leave", eventID), nil, nil, nil)
}

// SendChallenge sends a direct race challenge to another racer
func (c *Client) SendChallenge(ctx context.Context, req ChallengeRequest) (model.RaceChallenge, error) {
	var wire challengeWire
	if err := c.do(ctx, http.MethodPost, "/live/challenge", nil, req.toWire(), &wire); err != nil {
		return model.RaceChallenge{}, err
	}
	return wire.toModel()
}

// RespondChallenge accepts or declines an incoming challenge
func (c *Client) RespondChallenge(ctx context.Context, challengeID string, accept bool) error {
	body := map[string]bool{"accept": accept}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/live/challenge/%s/respond", challengeID), nil, body, nil)
}

// LiveStatus returns the server-side live summary
func (c *Client) LiveStatus(ctx context.Context) (StatusSummary, error) {
	var out StatusSummary
	if err := c.do(ctx, http.MethodGet, "/live/status", nil, nil, &out); err != nil {
		return StatusSummary{}, err
	}
	return out, nil
}
