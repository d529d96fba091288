package response_models

import "itinero/internal/models/trip_models"

type ItineraryResponse struct {
	Itinerary []trip_models.ItineraryItem `json:"itinerary"`
	Stats     PlanStats                   `json:"stats"`
}

// PlanStats summarizes one planning run.
type PlanStats struct {
	Stops          int     `json:"stops"`
	TotalKm        float64 `json:"total_km"`
	TotalTravelMin int     `json:"total_travel_minutes"`
	TotalStayMin   int     `json:"total_stay_minutes"`
	ExecutionMs    int64   `json:"execution_ms"`
}
