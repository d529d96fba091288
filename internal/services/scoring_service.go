package services

import (
	"math"
	"time"

	"itinero/internal/models/trip_models"
	"itinero/pkg/utils"
)

// ScoreWeights sets the relative pull of each scoring dimension. Weights are
// non-negative and need not sum to one.
type ScoreWeights struct {
	Rating     float64 `json:"rating_weight"`
	Efficiency float64 `json:"efficiency_weight"`
	TimeSlot   float64 `json:"time_slot_weight"`
	Distance   float64 `json:"distance_weight"`
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Rating: 0.3, Efficiency: 0.3, TimeSlot: 0.2, Distance: 0.2}
}

// Acceptable distance per transport mode, in kilometers.
var distanceThresholdsKm = map[string]float64{
	trip_models.ModeDriving:   30,
	trip_models.ModeTransit:   10,
	trip_models.ModeWalking:   2,
	trip_models.ModeBicycling: 5,
}

// Expected stay/travel ratio baseline; attractions tolerate worse trips,
// dining is expected to be close by.
const efficiencyBase = 1.5

var efficiencyRatios = map[string]float64{
	trip_models.LabelAttraction: 0.8,
	trip_models.LabelLandmark:   0.8,
	trip_models.LabelRestaurant: 1.2,
	trip_models.LabelStreetFood: 1.2,
}

func isAttractionLabel(label string) bool {
	return label == trip_models.LabelAttraction || label == trip_models.LabelLandmark
}

func isDiningLabel(label string) bool {
	return label == trip_models.LabelRestaurant || label == trip_models.LabelStreetFood
}

// PlaceScoring computes the desirability of a candidate from the planner's
// current position in space and time. A place that is closed at arrival
// scores negative infinity — exclusion, not a penalty.
type PlaceScoring struct {
	timeSvc           *TimeService
	geoSvc            *GeoService
	travelMode        string
	weights           ScoreWeights
	distanceThreshold float64
}

func NewPlaceScoring(timeSvc *TimeService, geoSvc *GeoService, travelMode string, weights *ScoreWeights) *PlaceScoring {
	threshold, ok := distanceThresholdsKm[travelMode]
	if !ok {
		threshold = distanceThresholdsKm[trip_models.ModeDriving]
	}
	w := DefaultScoreWeights()
	if weights != nil {
		w = *weights
	}
	return &PlaceScoring{
		timeSvc:           timeSvc,
		geoSvc:            geoSvc,
		travelMode:        travelMode,
		weights:           w,
		distanceThreshold: threshold,
	}
}

// CalculateScore scores a candidate given the current location, the current
// time, and an estimated travel time in minutes. Returns -Inf when the place
// would be closed at arrival.
func (s *PlaceScoring) CalculateScore(
	place trip_models.PlaceDetail,
	currentLocation trip_models.Coordinate,
	currentTime time.Time,
	travelTimeMin float64,
) float64 {
	arrival := currentTime.Add(time.Duration(travelTimeMin) * time.Minute)
	if !s.openAt(place, arrival) {
		return math.Inf(-1)
	}

	distance, err := s.geoSvc.CalculateDistance(currentLocation, place.Coordinate())
	if err != nil {
		return math.Inf(-1)
	}

	score := s.ratingScore(place)*s.weights.Rating +
		s.efficiencyScore(place, travelTimeMin)*s.weights.Efficiency +
		s.timeSlotScore(place, currentTime)*s.weights.TimeSlot +
		s.distanceScore(place, distance)*s.weights.Distance

	return clamp01(score)
}

func (s *PlaceScoring) openAt(place trip_models.PlaceDetail, t time.Time) bool {
	open, err := place.IsOpenAt(isoWeekday(t), utils.FormatClock(utils.MinutesOfDay(t)))
	return err == nil && open
}

// ratingScore maps the 0-5 rating onto [0,1], with a small bonus above 4.5
// and a neutral 0.5 when no rating exists.
func (s *PlaceScoring) ratingScore(place trip_models.PlaceDetail) float64 {
	if place.Rating == 0 {
		return 0.5
	}
	base := math.Min(1.0, place.Rating/5.0)
	if place.Rating >= 4.5 {
		bonus := (place.Rating - 4.5) * 0.1 // at most +0.05
		return math.Min(1.0, base+bonus)
	}
	return base
}

// efficiencyScore compares the stay/travel ratio against the expectation for
// the place's category.
func (s *PlaceScoring) efficiencyScore(place trip_models.PlaceDetail, travelTimeMin float64) float64 {
	if travelTimeMin <= 0 {
		return 1.0
	}

	ratio := float64(place.DurationMin) / travelTimeMin

	labelRatio, ok := efficiencyRatios[place.Label]
	if !ok {
		labelRatio = 1.0
	}
	expected := efficiencyBase * labelRatio

	return clamp01(ratio / expected)
}

// timeSlotScore blends period fit (full credit in the tagged period, 0.2 off
// per period of distance, floored at 0.3) with how much open time remains.
func (s *PlaceScoring) timeSlotScore(place trip_models.PlaceDetail, currentTime time.Time) float64 {
	currentPeriod := s.timeSvc.TimePeriodOf(currentTime)

	base := 1.0
	if currentPeriod != place.Period {
		diff := abs(trip_models.PeriodIndex(currentPeriod) - trip_models.PeriodIndex(place.Period))
		base = math.Max(0.3, 1.0-float64(diff)*0.2)
	}

	return math.Min(1.0, base*s.remainingOpenScore(place, currentTime))
}

// remainingOpenScore grants full credit when at least 1.5x the stay remains
// before closing, half credit down to 1x, nothing below that. The best slot
// of the day wins.
func (s *PlaceScoring) remainingOpenScore(place trip_models.PlaceDetail, currentTime time.Time) float64 {
	if !s.openAt(place, currentTime) {
		return 0.0
	}

	minutes := utils.MinutesOfDay(currentTime)
	best := 0.0
	for _, slot := range place.Hours[isoWeekday(currentTime)] {
		inside, err := slot.Contains(minutes)
		if err != nil || !inside {
			continue
		}
		remaining, err := slot.RemainingMinutes(minutes)
		if err != nil {
			continue
		}
		score := 0.0
		switch {
		case remaining >= int(float64(place.DurationMin)*1.5):
			score = 1.0
		case remaining >= place.DurationMin:
			score = 0.5
		}
		best = math.Max(best, score)
	}
	return best
}

// distanceScore decays linearly to zero at the mode threshold (widened 1.2x
// for attractions, narrowed 0.8x for dining) and keeps decaying beyond it,
// floored at zero — no hard cutoff.
func (s *PlaceScoring) distanceScore(place trip_models.PlaceDetail, distanceKm float64) float64 {
	threshold := s.distanceThreshold
	if isAttractionLabel(place.Label) {
		threshold *= 1.2
	} else if isDiningLabel(place.Label) {
		threshold *= 0.8
	}

	if distanceKm <= threshold {
		return clamp01(1.0 - distanceKm/threshold)
	}
	overRatio := (distanceKm - threshold) / threshold
	return math.Max(0.0, 0.5-overRatio)
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
