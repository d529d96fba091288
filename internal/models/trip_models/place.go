package trip_models

import (
	"fmt"

	"itinero/pkg/utils"
)

// Day-period tags. The order matters: period distance is measured by index
// when scoring a place against the current time of day.
const (
	PeriodMorning   = "morning"
	PeriodLunch     = "lunch"
	PeriodAfternoon = "afternoon"
	PeriodDinner    = "dinner"
	PeriodNight     = "night"
)

var PeriodSequence = []string{
	PeriodMorning, PeriodLunch, PeriodAfternoon, PeriodDinner, PeriodNight,
}

func PeriodIndex(period string) int {
	for i, p := range PeriodSequence {
		if p == period {
			return i
		}
	}
	return -1
}

func ValidPeriod(period string) bool {
	return PeriodIndex(period) >= 0
}

// Category labels carried by upstream candidate pools.
const (
	LabelAttraction    = "attraction"
	LabelLandmark      = "landmark"
	LabelRestaurant    = "restaurant"
	LabelStreetFood    = "street food"
	LabelTransportHub  = "transport hub"
	LabelUncategorized = "uncategorized"
)

// Default stay lengths in minutes per category.
var defaultStayMinutes = map[string]int{
	LabelRestaurant:   90,
	LabelStreetFood:   45,
	LabelAttraction:   120,
	LabelLandmark:     120,
	LabelTransportHub: 0,
}

const fallbackStayMinutes = 60

func DefaultStayMinutes(label string) int {
	if d, ok := defaultStayMinutes[label]; ok {
		return d
	}
	return fallbackStayMinutes
}

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func (c Coordinate) Validate() error {
	if !ValidCoordinate(c.Lat, c.Lon) {
		return fmt.Errorf("%w: lat=%v lon=%v", utils.ErrBadCoordinate, c.Lat, c.Lon)
	}
	return nil
}

// TimeSlot is one opening window, "HH:MM" inclusive at both ends. End before
// start means the window crosses midnight (night markets and the like).
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Bounds returns the slot edges as minutes since midnight.
func (s TimeSlot) Bounds() (int, int, error) {
	start, err := utils.ParseClock(s.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := utils.ParseClock(s.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func (s TimeSlot) Overnight() bool {
	start, end, err := s.Bounds()
	if err != nil {
		return false
	}
	return end < start
}

// Contains reports whether the clock value (minutes since midnight) falls
// inside the slot, overnight-aware and inclusive at both boundaries.
func (s TimeSlot) Contains(minutes int) (bool, error) {
	start, end, err := s.Bounds()
	if err != nil {
		return false, err
	}
	if end < start {
		return minutes >= start || minutes <= end, nil
	}
	return minutes >= start && minutes <= end, nil
}

// RemainingMinutes is how long the slot stays open past the given clock
// value, assuming the clock value is inside the slot.
func (s TimeSlot) RemainingMinutes(minutes int) (int, error) {
	start, end, err := s.Bounds()
	if err != nil {
		return 0, err
	}
	if end < start {
		end += 24 * 60
	}
	remaining := end - minutes
	if remaining < 0 {
		remaining += 24 * 60
	}
	return remaining, nil
}

// WeeklyHours maps ISO weekday (1=Monday .. 7=Sunday) to that day's opening
// slots. A missing or empty day is closed.
type WeeklyHours map[int][]TimeSlot

func OpenAllDay() []TimeSlot {
	return []TimeSlot{{Start: "00:00", End: "23:59"}}
}

func openAllWeek() WeeklyHours {
	h := make(WeeklyHours, 7)
	for day := 1; day <= 7; day++ {
		h[day] = OpenAllDay()
	}
	return h
}

// NormalizeWeeklyHours applies the upstream data conventions:
// a nil map, or a map where every day is closed, means the place is open
// around the clock. That conflates "no data" with "always open" but it is
// what the candidate feed has always meant, so it stays. Partially filled
// maps keep their gaps: an unset day is a closed day.
func NormalizeWeeklyHours(hours WeeklyHours) WeeklyHours {
	if len(hours) == 0 {
		return openAllWeek()
	}

	allClosed := true
	for day := 1; day <= 7; day++ {
		if len(hours[day]) > 0 {
			allClosed = false
			break
		}
	}
	if allClosed {
		return openAllWeek()
	}

	normalized := make(WeeklyHours, 7)
	for day := 1; day <= 7; day++ {
		if slots := hours[day]; len(slots) > 0 {
			normalized[day] = slots
		}
	}
	return normalized
}

// PlaceDetail is one candidate place as supplied by the retrieval pipeline.
type PlaceDetail struct {
	PlaceID     string      `json:"place_id,omitempty"`
	Name        string      `json:"name"`
	Rating      float64     `json:"rating"`
	Lat         float64     `json:"lat"`
	Lon         float64     `json:"lon"`
	DurationMin int         `json:"duration_min"`
	Label       string      `json:"label"`
	Period      string      `json:"period"`
	Hours       WeeklyHours `json:"hours,omitempty"`
	RouteURL    string      `json:"url,omitempty"`
}

// Normalize validates the fields the engine depends on and fills
// category-based defaults. It must run before a place enters the pool.
func (p *PlaceDetail) Normalize() error {
	if p.Name == "" {
		return fmt.Errorf("%w: place name is required", utils.ErrInvalidInput)
	}
	if !ValidCoordinate(p.Lat, p.Lon) {
		return fmt.Errorf("%w: place %q lat=%v lon=%v", utils.ErrBadCoordinate, p.Name, p.Lat, p.Lon)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("%w: place %q rating=%v", utils.ErrInvalidInput, p.Name, p.Rating)
	}
	if p.DurationMin < 0 {
		return fmt.Errorf("%w: place %q duration_min=%d", utils.ErrInvalidInput, p.Name, p.DurationMin)
	}
	if p.Label == "" {
		p.Label = LabelUncategorized
	}
	if !ValidPeriod(p.Period) {
		return fmt.Errorf("%w: place %q period=%q", utils.ErrInvalidInput, p.Name, p.Period)
	}
	if p.DurationMin == 0 && p.Label != LabelTransportHub {
		p.DurationMin = DefaultStayMinutes(p.Label)
	}
	p.Hours = NormalizeWeeklyHours(p.Hours)
	return nil
}

func (p *PlaceDetail) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lon}
}

// IsOpenAt reports whether the place is open on the given ISO weekday at the
// given "HH:MM" clock. A closed or unset day is false, never an error; only a
// malformed clock string fails.
func (p *PlaceDetail) IsOpenAt(day int, clock string) (bool, error) {
	minutes, err := utils.ParseClock(clock)
	if err != nil {
		return false, err
	}
	for _, slot := range p.Hours[day] {
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
