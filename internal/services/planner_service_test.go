package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinero/internal/models/trip_models"
	"itinero/pkg/utils"
)

func TestTranslateRequirement(t *testing.T) {
	raw := map[string]interface{}{
		"出發時間":        "08:30",
		"結束時間":        "20:00",
		"出發地點":        "Taipei Main Station",
		"結束地點":        "none",
		"交通方式":        "大眾運輸",
		"可接受距離門檻(KM)": 15.0,
		"午餐時間":        "11:30",
		"晚餐時間":        "none",
		"預算":          2000.0,
		"出發日":         "04-05",
		"unknown_key": "dropped",
	}

	req := TranslateRequirement(raw)
	assert.Equal(t, "08:30", req.StartTime)
	assert.Equal(t, "20:00", req.EndTime)
	assert.Equal(t, "Taipei Main Station", req.StartPoint)
	assert.Empty(t, req.EndPoint, "none means unset")
	assert.Equal(t, trip_models.ModeTransit, req.TransportMode)
	assert.Equal(t, 15.0, req.DistanceThresholdKm)
	assert.Equal(t, "11:30", req.LunchTime)
	assert.Empty(t, req.DinnerTime)
	assert.Equal(t, 2000, req.Budget)
	assert.Equal(t, "04-05", req.Date)
}

func TestTranslateRequirementTransportModes(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"大眾運輸", trip_models.ModeTransit},
		{"開車", trip_models.ModeDriving},
		{"騎車", trip_models.ModeBicycling},
		{"步行", trip_models.ModeWalking},
		{"driving", trip_models.ModeDriving}, // canonical passes through
	}
	for _, tt := range tests {
		req := TranslateRequirement(map[string]interface{}{"交通方式": tt.raw})
		assert.Equal(t, tt.want, req.TransportMode)
	}
}

func TestTranslateRequirementCanonicalKeys(t *testing.T) {
	req := TranslateRequirement(map[string]interface{}{
		"start_time":         "10:00",
		"distance_threshold": "12.5", // numbers may arrive as strings
	})
	assert.Equal(t, "10:00", req.StartTime)
	assert.Equal(t, 12.5, req.DistanceThresholdKm)
}

func TestApplyRequirementDefaultsBaseline(t *testing.T) {
	var req trip_models.TripRequirement
	ApplyRequirementDefaults(&req)

	assert.Equal(t, "09:00", req.StartTime)
	assert.Equal(t, "21:00", req.EndTime)
	assert.Equal(t, "Taipei Main Station", req.StartPoint)
	assert.Equal(t, trip_models.ModeDriving, req.TransportMode)
	assert.Equal(t, 30.0, req.DistanceThresholdKm)
	assert.Equal(t, "12:00", req.LunchTime)
	assert.Equal(t, "19:00", req.DinnerTime) // 21:00 day ends dinner two hours out
	require.NoError(t, req.Validate())
}

func TestDefaultLunchTime(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{"regular day", "09:00", "21:00", "12:00"},
		{"day over before lunch", "08:00", "10:30", ""},
		{"start after lunch window", "13:00", "21:00", ""},
		{"start inside window", "11:30", "21:00", "12:00"},
		{"start late in window caps at one", "12:45", "21:00", "13:00"},
		{"start inside window but day too short", "11:30", "11:45", ""},
		{"ends before noon", "09:00", "11:30", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := trip_models.TripRequirement{StartTime: tt.start, EndTime: tt.end}
			ApplyRequirementDefaults(&req)
			assert.Equal(t, tt.want, req.LunchTime)
		})
	}
}

func TestDefaultDinnerTime(t *testing.T) {
	tests := []struct {
		name string
		end  string
		want string
	}{
		{"day over by late afternoon", "16:30", ""},
		{"early evening end", "18:00", "16:30"},
		{"eight o'clock end", "20:00", "16:30"},
		{"mid evening end", "21:00", "19:00"},
		{"long day", "21:30", "20:00"},
		{"very long day", "23:00", "20:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := trip_models.TripRequirement{StartTime: "09:00", EndTime: tt.end}
			ApplyRequirementDefaults(&req)
			assert.Equal(t, tt.want, req.DinnerTime)
		})
	}
}

func TestPlanTripEndToEnd(t *testing.T) {
	planner := NewPlannerServiceWithRand(NewGeoService(nil, nil, nil), rand.New(rand.NewSource(7)))

	requirement := map[string]interface{}{
		"出發時間":        "09:00",
		"結束時間":        "21:00",
		"出發地點":        "25.0478,121.5170",
		"交通方式":        "開車",
		"可接受距離門檻(KM)": 30.0,
	}

	itinerary, stats, err := planner.PlanTrip(context.Background(), testPool(), requirement, nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, itinerary)

	assert.Equal(t, trip_models.LabelStart, itinerary[0].Label)
	assert.Equal(t, "09:00", itinerary[0].StartTime)
	assert.Greater(t, len(itinerary), 2)

	assert.Equal(t, len(itinerary), stats.Stops)
	assert.Greater(t, stats.TotalKm, 0.0)
	assert.Greater(t, stats.TotalStayMin, 0)
	assert.GreaterOrEqual(t, stats.ExecutionMs, int64(0))
}

func TestPlanTripUnresolvableStartFallsBackToHub(t *testing.T) {
	// No geocoder configured: a named start point cannot resolve and the
	// default hub takes over.
	planner := NewPlannerServiceWithRand(NewGeoService(nil, nil, nil), rand.New(rand.NewSource(7)))

	itinerary, _, err := planner.PlanTrip(context.Background(), testPool(), map[string]interface{}{
		"出發地點": "Somewhere nobody knows",
	}, nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, itinerary)
	assert.Equal(t, "Taipei Main Station", itinerary[0].Name)
}

func TestPlanTripRejectsBadRequirement(t *testing.T) {
	planner := NewPlannerService(NewGeoService(nil, nil, nil))

	_, _, err := planner.PlanTrip(context.Background(), testPool(), map[string]interface{}{
		"交通方式": "jetpack",
	}, nil, 0)
	assert.ErrorIs(t, err, utils.ErrInvalidTransport)

	_, _, err = planner.PlanTrip(context.Background(), testPool(), map[string]interface{}{
		"出發時間": "25:99",
	}, nil, 0)
	assert.ErrorIs(t, err, utils.ErrInvalidRequirement)

	_, _, err = planner.PlanTrip(context.Background(), testPool(), map[string]interface{}{
		"出發時間": "15:00",
		"結束時間": "10:00",
	}, nil, 0)
	assert.ErrorIs(t, err, utils.ErrInvalidRequirement)
}

func TestPlanTripRejectsBadPlace(t *testing.T) {
	planner := NewPlannerService(NewGeoService(nil, nil, nil))

	bad := trip_models.PlaceDetail{Name: "Broken", Lat: 120, Lon: 500, Period: trip_models.PeriodMorning}
	_, _, err := planner.PlanTrip(context.Background(), []trip_models.PlaceDetail{bad}, nil, nil, 0)
	assert.ErrorIs(t, err, utils.ErrBadCoordinate)
}

func TestPlanTripReplanning(t *testing.T) {
	planner := NewPlannerServiceWithRand(NewGeoService(nil, nil, nil), rand.New(rand.NewSource(7)))

	previous := []trip_models.ItineraryItem{
		{
			Step: 0, Name: "Taipei Main Station", Label: trip_models.LabelStart,
			Lat: 25.0478, Lon: 121.5170,
			StartTime: "09:00", EndTime: "09:00", Period: trip_models.PeriodMorning,
		},
		{
			Step: 1, Name: "Chiang Kai-shek Memorial Hall", Label: trip_models.LabelAttraction,
			Lat: 25.0347, Lon: 121.5218, DurationMin: 90,
			StartTime: "09:10", EndTime: "10:40", Period: trip_models.PeriodMorning,
		},
	}

	requirement := map[string]interface{}{
		"結束時間": "21:00",
		"出發地點": "25.0478,121.5170",
	}

	itinerary, _, err := planner.PlanTrip(context.Background(), testPool(), requirement, previous, 2)
	require.NoError(t, err)
	require.Greater(t, len(itinerary), 2)

	assert.Equal(t, previous[0], itinerary[0])
	assert.Equal(t, previous[1], itinerary[1])
	for _, item := range itinerary[2:] {
		assert.NotEqual(t, "Chiang Kai-shek Memorial Hall", item.Name, "preserved places must not repeat")
	}
	assert.GreaterOrEqual(t, itinerary[2].StartTime, "10:40", "the new tail departs after the cut")
}

func TestPlanTripOutOfRangeRestartIndexIsFreshPlan(t *testing.T) {
	planner := NewPlannerServiceWithRand(NewGeoService(nil, nil, nil), rand.New(rand.NewSource(7)))

	previous := []trip_models.ItineraryItem{
		{Step: 0, Name: "Taipei Main Station", StartTime: "09:00", EndTime: "09:00"},
	}

	itinerary, _, err := planner.PlanTrip(context.Background(), testPool(), map[string]interface{}{
		"出發地點": "25.0478,121.5170",
	}, previous, 5)
	require.NoError(t, err)
	require.NotEmpty(t, itinerary)
	assert.Equal(t, trip_models.LabelStart, itinerary[0].Label)
	assert.Equal(t, "09:00", itinerary[0].StartTime)
}
