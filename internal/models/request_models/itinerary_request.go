package request_models

import "itinero/internal/models/trip_models"

type PlanItineraryRequest struct {
	Places      []trip_models.PlaceDetail `json:"places" binding:"required"`
	Requirement map[string]interface{}    `json:"requirement"`
}

type ReplanItineraryRequest struct {
	Places      []trip_models.PlaceDetail   `json:"places" binding:"required"`
	Requirement map[string]interface{}      `json:"requirement"`
	Previous    []trip_models.ItineraryItem `json:"previous_itinerary" binding:"required"`

	// RestartIndex is the 1-based step whose departure the new plan resumes
	// from; items before it are preserved verbatim.
	RestartIndex int `json:"restart_index" binding:"required"`
}
