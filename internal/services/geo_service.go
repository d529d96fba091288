package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"itinero/internal/models/trip_models"
	"itinero/pkg/utils"
)

const earthRadiusKm = 6371.0087714

// Offline estimation parameters per transport mode.
var defaultSpeedsKmh = map[string]float64{
	trip_models.ModeDriving:   40,
	trip_models.ModeTransit:   30,
	trip_models.ModeWalking:   5,
	trip_models.ModeBicycling: 15,
}

const fallbackSpeedKmh = 30

// RouteEstimate is a single routing result, live or offline.
type RouteEstimate struct {
	DistanceKm  float64         `json:"distance_km"`
	DurationMin int             `json:"duration_minutes"`
	Mode        string          `json:"transport_mode"`
	IsEstimated bool            `json:"is_estimated"`
	RouteInfo   json.RawMessage `json:"route_info,omitempty"`
}

// RouteProvider is a live routing backend. Implementations may fail freely;
// GeoService downgrades every failure to an offline estimate.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination trip_models.Coordinate,
		mode string, departAt time.Time) (RouteEstimate, error)
}

// Geocoder resolves a free-form place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (trip_models.Coordinate, error)
}

// GeoService does the geographic reasoning for the planner: straight-line
// distances, route lookups with an always-available offline fallback, and
// range queries over candidate sets. Route results are memoized in a bounded
// cache shared across runs.
type GeoService struct {
	provider RouteProvider // nil when no live routing is configured
	geocoder Geocoder      // nil when no geocoding is configured
	cache    *RouteCache
}

func NewGeoService(provider RouteProvider, geocoder Geocoder, cache *RouteCache) *GeoService {
	if cache == nil {
		cache = NewRouteCache(DefaultRouteCacheSize)
	}
	return &GeoService{provider: provider, geocoder: geocoder, cache: cache}
}

// CalculateDistance returns the great-circle distance in kilometers, rounded
// to 0.1 km. Out-of-range coordinates are a contract violation and surface.
func (g *GeoService) CalculateDistance(a, b trip_models.Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(h))

	return math.Round(earthRadiusKm*c*10) / 10, nil
}

// GetRoute looks up travel between two points. It tries the cache, then the
// live provider, and falls back to the offline estimate on any provider
// failure — routing problems never propagate past this method. The only
// possible error is an invalid coordinate.
func (g *GeoService) GetRoute(
	ctx context.Context,
	origin, destination trip_models.Coordinate,
	mode string,
	departAt time.Time,
) (RouteEstimate, error) {
	key := RouteCacheKey(origin, destination, mode)
	if est, ok := g.cache.Get(key); ok {
		return est, nil
	}

	if g.provider != nil {
		est, err := g.provider.Route(ctx, origin, destination, mode, departAt)
		if err == nil {
			g.cache.Put(key, est)
			return est, nil
		}
		log.Printf("route provider failed, using offline estimate: %v", err)
	}

	est, err := g.EstimateRoute(origin, destination, mode)
	if err != nil {
		return RouteEstimate{}, err
	}
	g.cache.Put(key, est)
	return est, nil
}

// EstimateRoute computes the offline heuristic route: straight-line distance
// widened by a mode circuity factor, divided by the mode's cruising speed,
// inflated for stops and waits.
func (g *GeoService) EstimateRoute(origin, destination trip_models.Coordinate, mode string) (RouteEstimate, error) {
	distance, err := g.CalculateDistance(origin, destination)
	if err != nil {
		return RouteEstimate{}, err
	}

	speed, ok := defaultSpeedsKmh[mode]
	if !ok {
		speed = fallbackSpeedKmh
	}
	durationMin := distance / speed * 60

	circuity := 1.2
	inflation := 1.3
	if mode == trip_models.ModeDriving {
		circuity = 1.3
		inflation = 1.4
	}

	return RouteEstimate{
		DistanceKm:  math.Round(distance*circuity*10) / 10,
		DurationMin: int(durationMin * inflation),
		Mode:        mode,
		IsEstimated: true,
	}, nil
}

// Geocode resolves a place name through the configured geocoder.
func (g *GeoService) Geocode(ctx context.Context, query string) (trip_models.Coordinate, error) {
	if g.geocoder == nil {
		return trip_models.Coordinate{}, fmt.Errorf("%w: no geocoder configured", utils.ErrGeocodeFailed)
	}
	coord, err := g.geocoder.Geocode(ctx, query)
	if err != nil {
		return trip_models.Coordinate{}, fmt.Errorf("%w: %q: %v", utils.ErrGeocodeFailed, query, err)
	}
	if err := coord.Validate(); err != nil {
		return trip_models.Coordinate{}, err
	}
	return coord, nil
}

// Bounds is a rectangular coordinate envelope.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

func (b Bounds) Contains(c trip_models.Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// CalculateBounds returns the envelope radiusKm around center. One degree of
// latitude is ~111 km; longitude degrees shrink with latitude.
func (g *GeoService) CalculateBounds(center trip_models.Coordinate, radiusKm float64) (Bounds, error) {
	if err := center.Validate(); err != nil {
		return Bounds{}, err
	}
	if radiusKm <= 0 {
		return Bounds{}, fmt.Errorf("%w: radius must be positive, got %v", utils.ErrInvalidInput, radiusKm)
	}

	latChange := radiusKm / 111.0
	lonChange := radiusKm / (111.0 * math.Cos(center.Lat*math.Pi/180))

	round6 := func(v float64) float64 { return math.Round(v*1e6) / 1e6 }
	return Bounds{
		MinLat: round6(center.Lat - latChange),
		MaxLat: round6(center.Lat + latChange),
		MinLon: round6(center.Lon - lonChange),
		MaxLon: round6(center.Lon + lonChange),
	}, nil
}

// PlaceDistance pairs a candidate with its distance from a reference point.
type PlaceDistance struct {
	Place      trip_models.PlaceDetail `json:"place"`
	DistanceKm float64                 `json:"distance"`
}

// FindPlacesInRange returns the places within maxDistanceKm of center,
// nearest first. A cheap bounding-box pass filters before exact distances
// are computed.
func (g *GeoService) FindPlacesInRange(
	center trip_models.Coordinate,
	places []trip_models.PlaceDetail,
	maxDistanceKm float64,
) ([]PlaceDistance, error) {
	bounds, err := g.CalculateBounds(center, maxDistanceKm)
	if err != nil {
		return nil, err
	}

	var inRange []PlaceDistance
	for _, place := range places {
		if !bounds.Contains(place.Coordinate()) {
			continue
		}
		distance, err := g.CalculateDistance(center, place.Coordinate())
		if err != nil {
			return nil, err
		}
		if distance <= maxDistanceKm {
			inRange = append(inRange, PlaceDistance{Place: place, DistanceKm: distance})
		}
	}

	sort.Slice(inRange, func(i, j int) bool {
		return inRange[i].DistanceKm < inRange[j].DistanceKm
	})
	return inRange, nil
}

// ParseCoordinates reads "lat,lon" strings, tolerating spaces and
// parentheses. Returns false for anything unparseable or out of range.
func ParseCoordinates(s string) (trip_models.Coordinate, bool) {
	clean := strings.NewReplacer("(", "", ")", "", " ", "").Replace(s)
	parts := strings.Split(clean, ",")
	if len(parts) != 2 {
		return trip_models.Coordinate{}, false
	}

	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return trip_models.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return trip_models.Coordinate{}, false
	}
	if !trip_models.ValidCoordinate(lat, lon) {
		return trip_models.Coordinate{}, false
	}
	return trip_models.Coordinate{Lat: lat, Lon: lon}, true
}
