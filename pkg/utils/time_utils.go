// utils/timeutil.go
package utils

import (
	"fmt"
	"time"
)

// Taipei time location (CST, +08:00)
var tpeLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Taipei"); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*3600)
}()

const (
	ClockLayout    = "15:04"
	MonthDayLayout = "01-02"
	DateLayout     = "2006-01-02"
)

// ParseClock parses an "HH:MM" string into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM", wrapping past 24h.
func FormatClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// CombineDateClock anchors a clock value (minutes since midnight) onto the
// given calendar date. Values past 1440 roll into the following day.
func CombineDateClock(date time.Time, minutes int) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return midnight.Add(time.Duration(minutes) * time.Minute)
}

func NowTaipei() time.Time {
	return time.Now().In(tpeLoc)
}

// TomorrowTaipei is the default trip date when the requirement carries none.
func TomorrowTaipei() time.Time {
	return NowTaipei().AddDate(0, 0, 1)
}

// ParseMonthDay resolves an "MM-DD" string into a date in the current year.
func ParseMonthDay(s string) (time.Time, error) {
	t, err := time.Parse(MonthDayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateFormat, s)
	}
	now := NowTaipei()
	return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tpeLoc), nil
}
