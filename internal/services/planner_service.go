package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"itinero/internal/models/response_models"
	"itinero/internal/models/trip_models"
	"itinero/pkg/utils"
)

type PlannerServiceInterface interface {
	PlanTrip(
		ctx context.Context,
		places []trip_models.PlaceDetail,
		requirement map[string]interface{},
		previous []trip_models.ItineraryItem,
		restartIndex int,
	) ([]trip_models.ItineraryItem, response_models.PlanStats, error)
}

// Default planning anchor when no start point resolves: Taipei Main Station.
var defaultHub = trip_models.PlaceDetail{
	Name:   "Taipei Main Station",
	Lat:    25.0478,
	Lon:    121.5170,
	Label:  trip_models.LabelTransportHub,
	Period: trip_models.PeriodMorning,
	Hours:  trip_models.NormalizeWeeklyHours(nil),
}

// requirementKeyMap is the one authoritative mapping from the keys the
// upstream extraction layer emits to the canonical requirement fields. The
// extraction layer runs against zh-TW user text, so the foreign spellings are
// first-class; canonical spellings pass through so the API can also be called
// directly.
var requirementKeyMap = map[string]string{
	"出發時間":               "start_time",
	"結束時間":               "end_time",
	"出發地點":               "start_point",
	"結束地點":               "end_point",
	"交通方式":               "transport_mode",
	"可接受距離門檻(KM)":        "distance_threshold",
	"早餐時間":               "breakfast_time",
	"午餐時間":               "lunch_time",
	"晚餐時間":               "dinner_time",
	"預算":                 "budget",
	"出發日":                "date",
	"start_time":         "start_time",
	"end_time":           "end_time",
	"start_point":        "start_point",
	"end_point":          "end_point",
	"transport_mode":     "transport_mode",
	"distance_threshold": "distance_threshold",
	"breakfast_time":     "breakfast_time",
	"lunch_time":         "lunch_time",
	"dinner_time":        "dinner_time",
	"budget":             "budget",
	"date":               "date",
}

var transportModeMap = map[string]string{
	"大眾運輸": trip_models.ModeTransit,
	"開車":   trip_models.ModeDriving,
	"騎車":   trip_models.ModeBicycling,
	"步行":   trip_models.ModeWalking,
}

// PlannerService is the orchestration layer: it normalizes the raw
// requirement, applies defaults, resolves the trip endpoints, and hands a
// fresh strategy the run.
type PlannerService struct {
	geoSvc *GeoService
	rng    *rand.Rand // nil means time-seeded per run
}

func NewPlannerService(geoSvc *GeoService) PlannerServiceInterface {
	return &PlannerService{geoSvc: geoSvc}
}

// NewPlannerServiceWithRand pins the tie-break source, for tests.
func NewPlannerServiceWithRand(geoSvc *GeoService, rng *rand.Rand) PlannerServiceInterface {
	return &PlannerService{geoSvc: geoSvc, rng: rng}
}

func (p *PlannerService) PlanTrip(
	ctx context.Context,
	places []trip_models.PlaceDetail,
	requirement map[string]interface{},
	previous []trip_models.ItineraryItem,
	restartIndex int,
) ([]trip_models.ItineraryItem, response_models.PlanStats, error) {
	began := time.Now()

	req := TranslateRequirement(requirement)

	// Replanning: the preserved prefix ends where the new run begins.
	var prefix []trip_models.ItineraryItem
	if len(previous) > 0 && restartIndex >= 1 && restartIndex <= len(previous) {
		restartPoint := previous[restartIndex-1]
		req.StartTime = restartPoint.EndTime
		req.StartPoint = restartPoint.Name
		prefix = previous[:restartIndex]
	}

	ApplyRequirementDefaults(&req)
	if err := req.Validate(); err != nil {
		return nil, response_models.PlanStats{}, err
	}

	lunch := req.LunchTime
	if lunch == "" {
		lunch = "12:00"
	}
	dinner := req.DinnerTime
	if dinner == "" {
		dinner = "18:00"
	}
	timeSvc, err := NewTimeService(lunch, dinner)
	if err != nil {
		return nil, response_models.PlanStats{}, fmt.Errorf("%w: %v", utils.ErrInvalidRequirement, err)
	}

	tripDate := utils.TomorrowTaipei()
	if req.Date != "" {
		tripDate, _ = utils.ParseMonthDay(req.Date)
	}

	startMin, _ := utils.ParseClock(req.StartTime)
	endMin, _ := utils.ParseClock(req.EndTime)
	startTime := utils.CombineDateClock(tripDate, startMin)
	endTime := utils.CombineDateClock(tripDate, endMin)

	startLoc := p.resolveLocation(ctx, req.StartPoint, timeSvc.TimePeriodOf(startTime), nil)
	endExplicit := req.EndPoint != ""
	var endLoc trip_models.PlaceDetail
	if endExplicit {
		endLoc = p.resolveLocation(ctx, req.EndPoint, timeSvc.TimePeriodOf(endTime), &startLoc)
	} else {
		endLoc = startLoc
		endLoc.Period = timeSvc.TimePeriodOf(endTime)
	}

	pool := make([]trip_models.PlaceDetail, len(places))
	copy(pool, places)
	for i := range pool {
		if err := pool[i].Normalize(); err != nil {
			return nil, response_models.PlanStats{}, err
		}
	}

	cfg := StrategyConfig{
		StartTime:           startTime,
		EndTime:             endTime,
		TripDate:            tripDate,
		TravelMode:          req.TransportMode,
		DistanceThresholdKm: req.DistanceThresholdKm,
		EndLocation:         &endLoc,
		EndExplicit:         endExplicit,
	}
	scoring := NewPlaceScoring(timeSvc, p.geoSvc, req.TransportMode, nil)
	strategy := NewPlanningStrategy(timeSvc, p.geoSvc, scoring, cfg, p.rng)

	itinerary := strategy.Execute(ctx, startLoc, pool, prefix)

	stats := response_models.PlanStats{
		Stops:       len(itinerary),
		TotalKm:     strategy.TotalDistanceKm(),
		ExecutionMs: time.Since(began).Milliseconds(),
	}
	for _, item := range itinerary {
		stats.TotalTravelMin += item.Transport.TravelMin
		stats.TotalStayMin += item.DurationMin
	}

	return itinerary, stats, nil
}

// resolveLocation turns a requirement endpoint — a name, a "lat,lon" string,
// or empty — into a transport-hub PlaceDetail. Geocoding failures fall back
// to the given location, or to the default hub.
func (p *PlannerService) resolveLocation(
	ctx context.Context,
	point string,
	period string,
	fallback *trip_models.PlaceDetail,
) trip_models.PlaceDetail {
	hub := defaultHub
	if fallback != nil {
		hub = *fallback
	}
	hub.Period = period

	if point == "" || point == defaultHub.Name {
		return hub
	}

	if coord, ok := ParseCoordinates(point); ok {
		return trip_models.PlaceDetail{
			Name:   point,
			Lat:    coord.Lat,
			Lon:    coord.Lon,
			Label:  trip_models.LabelTransportHub,
			Period: period,
			Hours:  trip_models.NormalizeWeeklyHours(nil),
		}
	}

	coord, err := p.geoSvc.Geocode(ctx, point)
	if err != nil {
		log.Printf("could not resolve %q, falling back to %q: %v", point, hub.Name, err)
		return hub
	}
	return trip_models.PlaceDetail{
		Name:   point,
		Lat:    coord.Lat,
		Lon:    coord.Lon,
		Label:  trip_models.LabelTransportHub,
		Period: period,
		Hours:  trip_models.NormalizeWeeklyHours(nil),
	}
}

// TranslateRequirement maps a raw, possibly foreign-keyed requirement into
// the canonical form. Unknown keys are dropped; "none" values mean unset;
// transport-mode display values are translated alongside the keys.
func TranslateRequirement(raw map[string]interface{}) trip_models.TripRequirement {
	var req trip_models.TripRequirement
	for key, value := range raw {
		canonical, ok := requirementKeyMap[key]
		if !ok {
			continue
		}

		switch canonical {
		case "start_time":
			req.StartTime = stringValue(value)
		case "end_time":
			req.EndTime = stringValue(value)
		case "start_point":
			req.StartPoint = stringValue(value)
		case "end_point":
			req.EndPoint = stringValue(value)
		case "transport_mode":
			mode := stringValue(value)
			if mapped, ok := transportModeMap[mode]; ok {
				mode = mapped
			}
			req.TransportMode = mode
		case "distance_threshold":
			req.DistanceThresholdKm = floatValue(value)
		case "breakfast_time":
			req.BreakfastTime = stringValue(value)
		case "lunch_time":
			req.LunchTime = stringValue(value)
		case "dinner_time":
			req.DinnerTime = stringValue(value)
		case "budget":
			req.Budget = int(floatValue(value))
		case "date":
			req.Date = stringValue(value)
		}
	}
	return req
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	if s == "none" {
		return ""
	}
	return s
}

func floatValue(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if n == "none" {
			return 0
		}
		var f float64
		if _, err := fmt.Sscanf(n, "%f", &f); err == nil {
			return f
		}
	}
	return 0
}

// ApplyRequirementDefaults fills every unset field deterministically. The
// meal defaults depend on the day's span:
//
// Lunch: no lunch when the day ends before 11:00 or starts at/after 13:00.
// A start inside 11:00-13:00 eats 30 minutes in, capped at 13:00 and
// suppressed past the end time. An early start eats at 12:00 unless the day
// ends before noon.
//
// Dinner: none when the day ends by 16:30; 16:30 when it ends by 20:00;
// end minus two hours when it ends before 21:30; 20:00 for longer days.
func ApplyRequirementDefaults(req *trip_models.TripRequirement) {
	if req.StartTime == "" {
		req.StartTime = "09:00"
	}
	if req.EndTime == "" {
		req.EndTime = "21:00"
	}
	if req.StartPoint == "" {
		req.StartPoint = defaultHub.Name
	}
	if req.TransportMode == "" {
		req.TransportMode = trip_models.ModeDriving
	}
	if req.DistanceThresholdKm == 0 {
		req.DistanceThresholdKm = 30
	}

	start, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return // Validate will reject it with a better message
	}
	end, err := utils.ParseClock(req.EndTime)
	if err != nil {
		return
	}

	if req.LunchTime == "" {
		req.LunchTime = defaultLunchTime(start, end)
	}
	if req.DinnerTime == "" {
		req.DinnerTime = defaultDinnerTime(end)
	}
}

func defaultLunchTime(startMin, endMin int) string {
	const (
		earliestLunch = 11 * 60
		noon          = 12 * 60
		latestLunch   = 13 * 60
	)

	switch {
	case endMin < earliestLunch:
		return ""
	case startMin >= latestLunch:
		return ""
	case startMin >= earliestLunch:
		lunch := startMin + 30
		if lunch > latestLunch {
			lunch = latestLunch
		}
		if lunch > endMin {
			return ""
		}
		return utils.FormatClock(lunch)
	case endMin >= noon:
		return "12:00"
	default:
		return ""
	}
}

func defaultDinnerTime(endMin int) string {
	const (
		earliestDinner = 16*60 + 30
		latestDinner   = 20 * 60
		lateEvening    = 21*60 + 30
	)

	switch {
	case endMin <= earliestDinner:
		return ""
	case endMin <= latestDinner:
		return utils.FormatClock(earliestDinner)
	case endMin >= lateEvening:
		return utils.FormatClock(latestDinner)
	default:
		return utils.FormatClock(endMin - 2*60)
	}
}
