package trip_models

import (
	"fmt"

	"itinero/pkg/utils"
)

// Transport modes accepted by the planner.
const (
	ModeTransit   = "transit"
	ModeDriving   = "driving"
	ModeWalking   = "walking"
	ModeBicycling = "bicycling"
)

var ValidTransportModes = map[string]bool{
	ModeTransit:   true,
	ModeDriving:   true,
	ModeWalking:   true,
	ModeBicycling: true,
}

// TripRequirement is the canonical, defaulted form of a planning request.
// Empty strings mean "unset"; defaulting happens in the planner service
// before validation.
type TripRequirement struct {
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	StartPoint          string  `json:"start_point"`
	EndPoint            string  `json:"end_point,omitempty"`
	TransportMode       string  `json:"transport_mode"`
	DistanceThresholdKm float64 `json:"distance_threshold"`
	BreakfastTime       string  `json:"breakfast_time,omitempty"`
	LunchTime           string  `json:"lunch_time,omitempty"`
	DinnerTime          string  `json:"dinner_time,omitempty"`
	Budget              int     `json:"budget,omitempty"`
	Date                string  `json:"date,omitempty"` // MM-DD
}

// Validate checks the requirement after defaulting. Failures here mean the
// upstream contract was violated and abort the whole planning call.
func (r *TripRequirement) Validate() error {
	start, err := utils.ParseClock(r.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start_time: %v", utils.ErrInvalidRequirement, err)
	}
	end, err := utils.ParseClock(r.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end_time: %v", utils.ErrInvalidRequirement, err)
	}
	if start >= end {
		return fmt.Errorf("%w: end_time %s must be after start_time %s",
			utils.ErrInvalidRequirement, r.EndTime, r.StartTime)
	}
	if r.StartPoint == "" {
		return fmt.Errorf("%w: start_point is required", utils.ErrInvalidRequirement)
	}
	if !ValidTransportModes[r.TransportMode] {
		return fmt.Errorf("%w: %q", utils.ErrInvalidTransport, r.TransportMode)
	}
	if r.DistanceThresholdKm <= 0 {
		return fmt.Errorf("%w: distance_threshold must be positive, got %v",
			utils.ErrInvalidRequirement, r.DistanceThresholdKm)
	}
	for name, meal := range map[string]string{
		"breakfast_time": r.BreakfastTime,
		"lunch_time":     r.LunchTime,
		"dinner_time":    r.DinnerTime,
	} {
		if meal == "" {
			continue
		}
		if _, err := utils.ParseClock(meal); err != nil {
			return fmt.Errorf("%w: %s: %v", utils.ErrInvalidRequirement, name, err)
		}
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", utils.ErrInvalidRequirement)
	}
	if r.Date != "" {
		if _, err := utils.ParseMonthDay(r.Date); err != nil {
			return fmt.Errorf("%w: date: %v", utils.ErrInvalidRequirement, err)
		}
	}
	return nil
}
