package trip_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSlotContains(t *testing.T) {
	tests := []struct {
		name    string
		slot    TimeSlot
		minutes int
		want    bool
	}{
		{"inside", TimeSlot{Start: "09:00", End: "17:00"}, 12 * 60, true},
		{"at start boundary", TimeSlot{Start: "09:00", End: "17:00"}, 9 * 60, true},
		{"at end boundary", TimeSlot{Start: "09:00", End: "17:00"}, 17 * 60, true},
		{"before start", TimeSlot{Start: "09:00", End: "17:00"}, 9*60 - 1, false},
		{"after end", TimeSlot{Start: "09:00", End: "17:00"}, 17*60 + 1, false},
		{"overnight late evening", TimeSlot{Start: "22:00", End: "02:00"}, 23 * 60, true},
		{"overnight past midnight", TimeSlot{Start: "22:00", End: "02:00"}, 60, true},
		{"overnight closed afternoon", TimeSlot{Start: "22:00", End: "02:00"}, 15 * 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.slot.Contains(tt.minutes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeSlotContainsBadClock(t *testing.T) {
	_, err := TimeSlot{Start: "nine", End: "17:00"}.Contains(600)
	assert.Error(t, err)
}

func TestTimeSlotRemainingMinutes(t *testing.T) {
	slot := TimeSlot{Start: "09:00", End: "17:00"}
	remaining, err := slot.RemainingMinutes(15 * 60)
	require.NoError(t, err)
	assert.Equal(t, 2*60, remaining)

	overnight := TimeSlot{Start: "22:00", End: "02:00"}
	remaining, err = overnight.RemainingMinutes(23 * 60)
	require.NoError(t, err)
	assert.Equal(t, 3*60, remaining)
}

func TestNormalizeWeeklyHours(t *testing.T) {
	t.Run("nil means open around the clock", func(t *testing.T) {
		hours := NormalizeWeeklyHours(nil)
		for day := 1; day <= 7; day++ {
			require.Len(t, hours[day], 1)
			assert.Equal(t, "00:00", hours[day][0].Start)
			assert.Equal(t, "23:59", hours[day][0].End)
		}
	})

	t.Run("every day closed means open around the clock", func(t *testing.T) {
		hours := NormalizeWeeklyHours(WeeklyHours{1: {}, 2: {}})
		for day := 1; day <= 7; day++ {
			assert.Len(t, hours[day], 1)
		}
	})

	t.Run("partial map keeps unset days closed", func(t *testing.T) {
		hours := NormalizeWeeklyHours(WeeklyHours{
			1: {{Start: "10:00", End: "18:00"}},
		})
		assert.Len(t, hours[1], 1)
		for day := 2; day <= 7; day++ {
			assert.Empty(t, hours[day])
		}
	})
}

func TestDefaultStayMinutes(t *testing.T) {
	assert.Equal(t, 120, DefaultStayMinutes(LabelAttraction))
	assert.Equal(t, 120, DefaultStayMinutes(LabelLandmark))
	assert.Equal(t, 90, DefaultStayMinutes(LabelRestaurant))
	assert.Equal(t, 45, DefaultStayMinutes(LabelStreetFood))
	assert.Equal(t, 0, DefaultStayMinutes(LabelTransportHub))
	assert.Equal(t, 60, DefaultStayMinutes("something else"))
}

func TestPlaceDetailNormalize(t *testing.T) {
	t.Run("fills category defaults", func(t *testing.T) {
		p := PlaceDetail{
			Name:   "National Palace Museum",
			Lat:    25.1024,
			Lon:    121.5485,
			Label:  LabelAttraction,
			Period: PeriodMorning,
		}
		require.NoError(t, p.Normalize())
		assert.Equal(t, 120, p.DurationMin)
		assert.NotEmpty(t, p.Hours[1])
	})

	t.Run("keeps explicit duration", func(t *testing.T) {
		p := PlaceDetail{
			Name:        "Quick stop",
			Lat:         25.0,
			Lon:         121.5,
			DurationMin: 20,
			Label:       LabelLandmark,
			Period:      PeriodAfternoon,
		}
		require.NoError(t, p.Normalize())
		assert.Equal(t, 20, p.DurationMin)
	})

	t.Run("uncategorized fallback", func(t *testing.T) {
		p := PlaceDetail{Name: "Mystery", Lat: 25.0, Lon: 121.5, Period: PeriodNight}
		require.NoError(t, p.Normalize())
		assert.Equal(t, LabelUncategorized, p.Label)
		assert.Equal(t, 60, p.DurationMin)
	})

	t.Run("rejects bad coordinates", func(t *testing.T) {
		p := PlaceDetail{Name: "Off the map", Lat: 95, Lon: 121.5, Period: PeriodMorning}
		assert.Error(t, p.Normalize())
	})

	t.Run("rejects unknown period", func(t *testing.T) {
		p := PlaceDetail{Name: "Nowhen", Lat: 25.0, Lon: 121.5, Period: "brunch"}
		assert.Error(t, p.Normalize())
	})
}

func TestPlaceDetailIsOpenAt(t *testing.T) {
	p := PlaceDetail{
		Name:   "Weekend market",
		Lat:    25.0,
		Lon:    121.5,
		Label:  LabelStreetFood,
		Period: PeriodDinner,
		Hours: WeeklyHours{
			6: {{Start: "16:00", End: "23:00"}},
			7: {{Start: "16:00", End: "23:00"}},
		},
	}
	require.NoError(t, p.Normalize())

	open, err := p.IsOpenAt(6, "18:00")
	require.NoError(t, err)
	assert.True(t, open)

	open, err = p.IsOpenAt(3, "18:00")
	require.NoError(t, err)
	assert.False(t, open)

	_, err = p.IsOpenAt(6, "half past six")
	assert.Error(t, err)
}

func TestPeriodIndex(t *testing.T) {
	assert.Equal(t, 0, PeriodIndex(PeriodMorning))
	assert.Equal(t, 4, PeriodIndex(PeriodNight))
	assert.Equal(t, -1, PeriodIndex("brunch"))
	assert.True(t, ValidPeriod(PeriodLunch))
	assert.False(t, ValidPeriod(""))
}
