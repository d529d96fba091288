package plannerfx

import (
	"go.uber.org/fx"

	"itinero/internal/services"
)

var Module = fx.Provide(
	providePlannerService)

func providePlannerService(geoSvc *services.GeoService) services.PlannerServiceInterface {
	return services.NewPlannerService(geoSvc)
}
