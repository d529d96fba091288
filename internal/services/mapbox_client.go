package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"itinero/internal/models/trip_models"
	"itinero/pkg/utils"
)

// MapboxClient talks to the Mapbox Directions and Geocoding APIs. It backs
// both the RouteProvider and Geocoder interfaces; the planner treats it as
// optional and every failure here is recoverable upstream.
type MapboxClient struct {
	HTTP        *http.Client
	AccessToken string
}

func NewMapboxClient(accessToken string) *MapboxClient {
	return &MapboxClient{
		HTTP:        &http.Client{Timeout: 15 * time.Second},
		AccessToken: accessToken,
	}
}

// Mapbox has no transit profile; transit requests are routed as driving and
// the offline estimator keeps the slower transit speed for its own results.
var mapboxProfiles = map[string]string{
	trip_models.ModeDriving:   "driving",
	trip_models.ModeTransit:   "driving",
	trip_models.ModeWalking:   "walking",
	trip_models.ModeBicycling: "cycling",
}

func (c *MapboxClient) Route(
	ctx context.Context,
	origin, destination trip_models.Coordinate,
	mode string,
	departAt time.Time,
) (RouteEstimate, error) {
	profile, ok := mapboxProfiles[mode]
	if !ok {
		profile = "driving"
	}

	coords := fmt.Sprintf("%f,%f;%f,%f", origin.Lon, origin.Lat, destination.Lon, destination.Lat)
	u := url.URL{
		Scheme: "https",
		Host:   "api.mapbox.com",
		Path:   fmt.Sprintf("/directions/v5/mapbox/%s/%s", profile, coords),
	}
	q := url.Values{}
	q.Set("alternatives", "false")
	q.Set("overview", "simplified")
	q.Set("geometries", "polyline")
	if !departAt.IsZero() {
		q.Set("depart_at", departAt.Format("2006-01-02T15:04"))
	}
	q.Set("access_token", c.AccessToken)
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return RouteEstimate{}, fmt.Errorf("%w: directions: %v", utils.ErrRoutingUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return RouteEstimate{}, fmt.Errorf("%w: directions status %s", utils.ErrRoutingUnavailable, resp.Status)
	}

	var payload struct {
		Routes []json.RawMessage `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return RouteEstimate{}, fmt.Errorf("mapbox decode: %w", err)
	}
	if len(payload.Routes) == 0 {
		return RouteEstimate{}, fmt.Errorf("mapbox directions: no route found")
	}

	var route struct {
		DistanceMeters  float64 `json:"distance"`
		DurationSeconds float64 `json:"duration"`
	}
	if err := json.Unmarshal(payload.Routes[0], &route); err != nil {
		return RouteEstimate{}, fmt.Errorf("mapbox route decode: %w", err)
	}

	return RouteEstimate{
		DistanceKm:  float64(int(route.DistanceMeters/100+0.5)) / 10,
		DurationMin: int(route.DurationSeconds / 60),
		Mode:        mode,
		IsEstimated: false,
		RouteInfo:   payload.Routes[0],
	}, nil
}

func (c *MapboxClient) Geocode(ctx context.Context, query string) (trip_models.Coordinate, error) {
	u := url.URL{
		Scheme: "https",
		Host:   "api.mapbox.com",
		Path:   fmt.Sprintf("/geocoding/v5/mapbox.places/%s.json", query),
	}
	q := url.Values{}
	q.Set("limit", "1")
	q.Set("access_token", c.AccessToken)
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return trip_models.Coordinate{}, fmt.Errorf("mapbox geocoding http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return trip_models.Coordinate{}, fmt.Errorf("mapbox geocoding bad status: %s", resp.Status)
	}

	var payload struct {
		Features []struct {
			Center []float64 `json:"center"` // [lon, lat]
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return trip_models.Coordinate{}, fmt.Errorf("mapbox geocoding decode: %w", err)
	}
	if len(payload.Features) == 0 || len(payload.Features[0].Center) != 2 {
		return trip_models.Coordinate{}, fmt.Errorf("mapbox geocoding: no result for %q", query)
	}

	return trip_models.Coordinate{
		Lat: payload.Features[0].Center[1],
		Lon: payload.Features[0].Center[0],
	}, nil
}
