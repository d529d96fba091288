package services

import (
	"time"

	"itinero/internal/models/trip_models"
	"itinero/pkg/utils"
)

// MealWindowMin is the half-width of the lunch/dinner windows in minutes.
const MealWindowMin = 60

// TimeService classifies clock times into day periods and tracks the one-way
// period progression of a single planning run. Construct one per run (or call
// Reset) — the meal flags are run-scoped state, never shared.
type TimeService struct {
	lunchMin  int // minutes since midnight, -1 when unset
	dinnerMin int

	currentPeriod string
	lunchDone     bool
	dinnerDone    bool
}

// NewTimeService builds a service around the configured meal times. Either
// may be empty, in which case classification falls back to fixed hour bands.
func NewTimeService(lunchTime, dinnerTime string) (*TimeService, error) {
	s := &TimeService{lunchMin: -1, dinnerMin: -1}
	if lunchTime != "" {
		m, err := utils.ParseClock(lunchTime)
		if err != nil {
			return nil, err
		}
		s.lunchMin = m
	}
	if dinnerTime != "" {
		m, err := utils.ParseClock(dinnerTime)
		if err != nil {
			return nil, err
		}
		s.dinnerMin = m
	}
	s.Reset()
	return s, nil
}

// Reset clears the run-scoped period state. Call before every planning run.
func (s *TimeService) Reset() {
	s.currentPeriod = trip_models.PeriodMorning
	s.lunchDone = false
	s.dinnerDone = false
}

// TimePeriodOf is the pure classification: it partitions the day around the
// configured meal times with a ±MealWindowMin window each, and never touches
// the run state.
func (s *TimeService) TimePeriodOf(t time.Time) string {
	minutes := utils.MinutesOfDay(t)

	if s.lunchMin >= 0 {
		lunchStart := s.lunchMin - MealWindowMin
		lunchEnd := s.lunchMin + MealWindowMin
		if minutes < lunchStart {
			return trip_models.PeriodMorning
		}
		if minutes <= lunchEnd {
			return trip_models.PeriodLunch
		}
		if s.dinnerMin >= 0 {
			dinnerStart := s.dinnerMin - MealWindowMin
			dinnerEnd := s.dinnerMin + MealWindowMin
			if minutes < dinnerStart {
				return trip_models.PeriodAfternoon
			}
			if minutes <= dinnerEnd {
				return trip_models.PeriodDinner
			}
			return trip_models.PeriodNight
		}
	}

	// No meal times configured: fixed hour bands.
	switch hour := t.Hour(); {
	case hour < 11:
		return trip_models.PeriodMorning
	case hour < 14:
		return trip_models.PeriodLunch
	case hour < 17:
		return trip_models.PeriodAfternoon
	case hour < 20:
		return trip_models.PeriodDinner
	default:
		return trip_models.PeriodNight
	}
}

// CurrentPeriod advances the one-way state machine
// morning → lunch → afternoon → dinner → night and returns the period now in
// effect. Morning flips to lunch on proximity to the lunch time; lunch only
// yields to afternoon once UpdateMealStatus has recorded an eaten lunch, so a
// run never re-enters lunch after the meal. Dinner mirrors lunch.
func (s *TimeService) CurrentPeriod(t time.Time) string {
	minutes := utils.MinutesOfDay(t)

	switch s.currentPeriod {
	case trip_models.PeriodMorning:
		if s.lunchMin >= 0 && abs(minutes-s.lunchMin) <= MealWindowMin {
			s.currentPeriod = trip_models.PeriodLunch
		}
	case trip_models.PeriodLunch:
		if s.lunchDone {
			s.currentPeriod = trip_models.PeriodAfternoon
		}
	case trip_models.PeriodAfternoon:
		if s.dinnerMin >= 0 && abs(minutes-s.dinnerMin) <= MealWindowMin {
			s.currentPeriod = trip_models.PeriodDinner
		}
	case trip_models.PeriodDinner:
		if s.dinnerDone {
			s.currentPeriod = trip_models.PeriodNight
		}
	}

	return s.currentPeriod
}

// UpdateMealStatus records a meal as eaten. Only a lunch-period place chosen
// during the lunch period counts, and likewise for dinner.
func (s *TimeService) UpdateMealStatus(placePeriod string) {
	if placePeriod == trip_models.PeriodLunch && s.currentPeriod == trip_models.PeriodLunch {
		s.lunchDone = true
	} else if placePeriod == trip_models.PeriodDinner && s.currentPeriod == trip_models.PeriodDinner {
		s.dinnerDone = true
	}
}

// ReplayMeal seeds the state machine from an itinerary item preserved across
// a replanning cut, so the resumed run does not schedule a second lunch or
// dinner.
func (s *TimeService) ReplayMeal(placePeriod string) {
	switch placePeriod {
	case trip_models.PeriodLunch:
		s.lunchDone = true
		s.currentPeriod = trip_models.PeriodAfternoon
	case trip_models.PeriodDinner:
		s.lunchDone = true
		s.dinnerDone = true
		s.currentPeriod = trip_models.PeriodNight
	}
}

// IsOpenAt evaluates a weekly hours map for the given ISO weekday and "HH:MM"
// clock. Closed or absent days are simply false; only malformed clock input
// is an error.
func (s *TimeService) IsOpenAt(hours trip_models.WeeklyHours, day int, clock string) (bool, error) {
	minutes, err := utils.ParseClock(clock)
	if err != nil {
		return false, err
	}
	for _, slot := range hours[day] {
		inside, err := slot.Contains(minutes)
		if err != nil {
			continue
		}
		if inside {
			return true, nil
		}
	}
	return false, nil
}

// NextOpening describes the nearest future slot a place can host a visit in.
type NextOpening struct {
	Day         int                  `json:"day"`
	Slot        trip_models.TimeSlot `json:"slot"`
	WaitMinutes int                  `json:"wait_minutes"`
}

// FindNextAvailableTime scans up to seven days ahead of the given moment for
// the first slot that both starts after it and is long enough for the
// requested stay. Returns false when no such slot exists.
func (s *TimeService) FindNextAvailableTime(
	hours trip_models.WeeklyHours,
	from time.Time,
	durationMin int,
) (NextOpening, bool) {
	fromMinutes := utils.MinutesOfDay(from)

	for offset := 0; offset < 7; offset++ {
		day := (isoWeekday(from)-1+offset)%7 + 1
		for _, slot := range hours[day] {
			start, end, err := slot.Bounds()
			if err != nil {
				continue
			}
			if offset == 0 && start <= fromMinutes {
				continue
			}
			if end < start {
				end += 24 * 60
			}
			if end-start < durationMin {
				continue
			}
			wait := offset*24*60 + start - fromMinutes
			return NextOpening{Day: day, Slot: slot, WaitMinutes: wait}, true
		}
	}
	return NextOpening{}, false
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
