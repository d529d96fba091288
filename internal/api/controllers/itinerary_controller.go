package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"itinero/internal/models/request_models"
	"itinero/internal/models/response_models"
	"itinero/internal/services"
	"itinero/pkg/utils"
)

type ItineraryController struct {
	plannerService services.PlannerServiceInterface
}

func NewItineraryController(plannerService services.PlannerServiceInterface) *ItineraryController {
	return &ItineraryController{
		plannerService: plannerService,
	}
}

func (i *ItineraryController) PlanItinerary(c *gin.Context) {
	var req request_models.PlanItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Places) == 0 {
		utils.RespondError(c, http.StatusBadRequest, "At least one candidate place is required")
		return
	}

	itinerary, stats, err := i.plannerService.PlanTrip(
		c.Request.Context(), req.Places, req.Requirement, nil, 0)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.ItineraryResponse{
		Itinerary: itinerary,
		Stats:     stats,
	}, "Itinerary planned successfully")
}

func (i *ItineraryController) ReplanItinerary(c *gin.Context) {
	var req request_models.ReplanItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.RestartIndex < 1 || req.RestartIndex > len(req.Previous) {
		utils.RespondError(c, http.StatusBadRequest, "Restart index is out of range")
		return
	}

	itinerary, stats, err := i.plannerService.PlanTrip(
		c.Request.Context(), req.Places, req.Requirement, req.Previous, req.RestartIndex)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.ItineraryResponse{
		Itinerary: itinerary,
		Stats:     stats,
	}, "Itinerary replanned successfully")
}
