package controllers_fx

import (
	"go.uber.org/fx"

	"itinero/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewItineraryController))
