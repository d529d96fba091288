package services

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"itinero/internal/models/trip_models"
	"itinero/pkg/utils"
)

// How many top-scored candidates enter the random tie-break.
const tieBreakPoolSize = 5

// Proxy travel-time factor: straight-line km doubled gives minutes, cheap
// enough to score every candidate without a routing call each.
const proxyMinutesPerKm = 2

// StrategyConfig is the per-run planning context, assembled by the planner
// service.
type StrategyConfig struct {
	StartTime           time.Time
	EndTime             time.Time
	TripDate            time.Time
	TravelMode          string
	DistanceThresholdKm float64
	EndLocation         *trip_models.PlaceDetail
	EndExplicit         bool // the requirement named an end point
}

// PlanningStrategy runs the greedy selection loop. One strategy value serves
// one Execute call; the planner service constructs it fresh per request, so
// the visited set and time state never leak between runs.
//
// Visited places are tracked by display name. Two distinct places sharing a
// name would collide; candidate pools are city-scoped so this has not been a
// problem in practice, but it is a known limitation.
type PlanningStrategy struct {
	timeSvc *TimeService
	geoSvc  *GeoService
	scoring *PlaceScoring
	cfg     StrategyConfig

	visited   map[string]bool
	itinerary []trip_models.ItineraryItem
	totalKm   float64
	endName   string
	rng       *rand.Rand
}

// NewPlanningStrategy wires the strategy. rng may be nil for a time-seeded
// source; tests inject a fixed seed to pin the tie-break.
func NewPlanningStrategy(
	timeSvc *TimeService,
	geoSvc *GeoService,
	scoring *PlaceScoring,
	cfg StrategyConfig,
	rng *rand.Rand,
) *PlanningStrategy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PlanningStrategy{
		timeSvc: timeSvc,
		geoSvc:  geoSvc,
		scoring: scoring,
		cfg:     cfg,
		visited: make(map[string]bool),
		rng:     rng,
	}
}

type scoredPlace struct {
	place trip_models.PlaceDetail
	score float64
}

// SelectNext picks the next place to visit from the pool: filter to the
// current period, score with a proxy travel time, rank, and draw randomly
// from the leaders. Only the drawn place gets a real routing call. Returns
// false when nothing qualifies.
func (p *PlanningStrategy) SelectNext(
	ctx context.Context,
	current trip_models.Coordinate,
	pool []trip_models.PlaceDetail,
	now time.Time,
) (trip_models.PlaceDetail, RouteEstimate, bool) {
	currentPeriod := p.timeSvc.CurrentPeriod(now)
	weekday := isoWeekday(p.cfg.TripDate)

	var scored []scoredPlace
	for _, place := range pool {
		if place.Period != currentPeriod || p.visited[place.Name] {
			continue
		}

		distance, err := p.geoSvc.CalculateDistance(current, place.Coordinate())
		if err != nil {
			continue
		}
		proxyTravelMin := distance * proxyMinutesPerKm

		arrival := now.Add(time.Duration(proxyTravelMin) * time.Minute)
		open, err := place.IsOpenAt(weekday, utils.FormatClock(utils.MinutesOfDay(arrival)))
		if err != nil || !open {
			continue
		}

		score := p.scoring.CalculateScore(place, current, now, proxyTravelMin)
		if math.IsInf(score, -1) {
			continue
		}
		scored = append(scored, scoredPlace{place: place, score: score})
	}

	if len(scored) == 0 {
		log.Printf("no candidates fit the %s period", currentPeriod)
		return trip_models.PlaceDetail{}, RouteEstimate{}, false
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > tieBreakPoolSize {
		scored = scored[:tieBreakPoolSize]
	}

	selected := scored[p.rng.Intn(len(scored))].place

	travel, err := p.geoSvc.GetRoute(ctx, current, selected.Coordinate(), p.cfg.TravelMode, now)
	if err != nil {
		return trip_models.PlaceDetail{}, RouteEstimate{}, false
	}

	p.timeSvc.UpdateMealStatus(selected.Period)

	return selected, travel, true
}

// Execute runs the full greedy loop and returns the itinerary. previous, when
// non-nil, is a preserved prefix from an earlier run: its places count as
// visited, its lunch/dinner items advance the meal state machine, and no new
// start item is emitted. Running out of candidates or time just ends the
// itinerary early — that is a valid result, not a failure.
func (p *PlanningStrategy) Execute(
	ctx context.Context,
	start trip_models.PlaceDetail,
	pool []trip_models.PlaceDetail,
	previous []trip_models.ItineraryItem,
) []trip_models.ItineraryItem {
	p.timeSvc.Reset()
	p.visited = make(map[string]bool)
	p.itinerary = p.itinerary[:0]
	p.totalKm = 0

	now := p.cfg.StartTime

	var originalStart *trip_models.ItineraryItem
	if len(previous) > 0 {
		p.itinerary = append(p.itinerary, previous...)
		for i := range previous {
			p.visited[previous[i].Name] = true
			p.timeSvc.ReplayMeal(previous[i].Period)
			if previous[i].Step == 0 {
				originalStart = &previous[i]
			}
		}
	}

	endLocation := p.resolveEndLocation(start, originalStart)
	p.endName = endLocation.Name

	if len(previous) == 0 {
		startItem := p.buildItem(start, now, now, RouteEstimate{Mode: p.cfg.TravelMode})
		p.visited[start.Name] = true
		p.itinerary = append(p.itinerary, startItem)
	}

	remaining := append([]trip_models.PlaceDetail(nil), pool...)
	current := start

	for len(remaining) > 0 && now.Before(p.cfg.EndTime) {
		place, travel, ok := p.SelectNext(ctx, current.Coordinate(), remaining, now)
		if !ok {
			log.Printf("no suitable next place, closing out the itinerary")
			break
		}

		arrival := now.Add(time.Duration(travel.DurationMin) * time.Minute)
		departure := arrival.Add(time.Duration(place.DurationMin) * time.Minute)

		// Could we still make it back to the end location in time?
		returnLeg, err := p.geoSvc.GetRoute(ctx, place.Coordinate(), endLocation.Coordinate(), p.cfg.TravelMode, departure)
		if err != nil {
			break
		}
		finalArrival := departure.Add(time.Duration(returnLeg.DurationMin) * time.Minute)
		if finalArrival.After(p.cfg.EndTime) {
			log.Printf("adding %q would overrun the end time, heading to the end point", place.Name)
			break
		}

		p.itinerary = append(p.itinerary, p.buildItem(place, arrival, departure, travel))
		p.visited[place.Name] = true
		p.totalKm += travel.DistanceKm

		current = place
		now = departure
		remaining = removePlace(remaining, place.Name)
	}

	// Close the loop at the end location unless we are already there.
	if len(p.itinerary) > 0 && p.itinerary[len(p.itinerary)-1].Name != endLocation.Name {
		finalLeg, err := p.geoSvc.GetRoute(
			ctx,
			p.itinerary[len(p.itinerary)-1].Coordinate(),
			endLocation.Coordinate(),
			p.cfg.TravelMode,
			now,
		)
		if err == nil {
			finalArrival := now.Add(time.Duration(finalLeg.DurationMin) * time.Minute)
			endLocation.Period = p.timeSvc.TimePeriodOf(finalArrival)
			p.itinerary = append(p.itinerary, p.buildItem(endLocation, finalArrival, finalArrival, finalLeg))
			p.totalKm += finalLeg.DistanceKm
		}
	}

	return p.itinerary
}

// TotalDistanceKm reports the distance accumulated by the last Execute call.
func (p *PlanningStrategy) TotalDistanceKm() float64 {
	return p.totalKm
}

// resolveEndLocation: an explicitly requested end point wins; when resuming
// without one, the original trip's start is the end; otherwise the run ends
// where it began.
func (p *PlanningStrategy) resolveEndLocation(
	start trip_models.PlaceDetail,
	originalStart *trip_models.ItineraryItem,
) trip_models.PlaceDetail {
	if p.cfg.EndLocation != nil && (p.cfg.EndExplicit || originalStart == nil) {
		return *p.cfg.EndLocation
	}
	if originalStart != nil {
		return itemAsHub(*originalStart)
	}
	return start
}

func itemAsHub(item trip_models.ItineraryItem) trip_models.PlaceDetail {
	return trip_models.PlaceDetail{
		PlaceID:     item.PlaceID,
		Name:        item.Name,
		Lat:         item.Lat,
		Lon:         item.Lon,
		DurationMin: 0,
		Label:       trip_models.LabelTransportHub,
		Period:      trip_models.PeriodNight,
		Hours:       trip_models.NormalizeWeeklyHours(nil),
	}
}

// buildItem assembles one itinerary entry. Both displayed times are rounded
// up to the next 5 minutes on the same grid, so one item's displayed start
// never falls before the previous item's displayed end; the unrounded times
// keep driving the loop.
func (p *PlanningStrategy) buildItem(
	place trip_models.PlaceDetail,
	arrival, departure time.Time,
	travel RouteEstimate,
) trip_models.ItineraryItem {
	roundedArrival := roundUpTo5Min(arrival)
	roundedDeparture := roundUpTo5Min(departure)

	label := place.Label
	if len(p.visited) == 0 {
		label = trip_models.LabelStart
	} else if place.Name == p.endName {
		label = trip_models.LabelEnd
	}

	travelEnd := arrival
	travelStart := travelEnd.Add(-time.Duration(travel.DurationMin) * time.Minute)
	window := travelStart.Format("15:04") + "-" + travelEnd.Format("15:04")

	return trip_models.ItineraryItem{
		Step:        len(p.visited),
		PlaceID:     place.PlaceID,
		Name:        place.Name,
		Label:       label,
		Hours:       matchSlot(place.Hours, isoWeekday(p.cfg.TripDate), arrival),
		Lat:         place.Lat,
		Lon:         place.Lon,
		Date:        p.cfg.TripDate.Format(utils.DateLayout),
		StartTime:   roundedArrival.Format("15:04"),
		EndTime:     roundedDeparture.Format("15:04"),
		DurationMin: place.DurationMin,
		Transport: trip_models.TransportLeg{
			Mode:       p.cfg.TravelMode,
			DistanceKm: travel.DistanceKm,
			TravelMin:  travel.DurationMin,
			Window:     window,
		},
		RouteInfo: travel.RouteInfo,
		RouteURL:  place.RouteURL,
		Period:    place.Period,
	}
}

func matchSlot(hours trip_models.WeeklyHours, day int, arrival time.Time) *trip_models.TimeSlot {
	minutes := utils.MinutesOfDay(arrival)
	for _, slot := range hours[day] {
		inside, err := slot.Contains(minutes)
		if err != nil {
			continue
		}
		if inside {
			matched := slot
			return &matched
		}
	}
	return nil
}

func roundUpTo5Min(t time.Time) time.Time {
	rounded := t.Truncate(5 * time.Minute)
	if rounded.Before(t) {
		rounded = rounded.Add(5 * time.Minute)
	}
	return rounded
}

func removePlace(pool []trip_models.PlaceDetail, name string) []trip_models.PlaceDetail {
	for i := range pool {
		if pool[i].Name == name {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
