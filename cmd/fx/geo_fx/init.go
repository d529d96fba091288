package geofx

import (
	"log"
	"os"

	"go.uber.org/fx"

	"itinero/internal/services"
)

var Module = fx.Provide(
	provideGeoService)

func provideGeoService() *services.GeoService {
	token := os.Getenv("MAPBOX_ACCESS_TOKEN")
	if token == "" {
		// Offline mode: every route falls back to the haversine estimator.
		log.Println("MAPBOX_ACCESS_TOKEN not set, running with estimated routes only")
		return services.NewGeoService(nil, nil, nil)
	}

	client := services.NewMapboxClient(token)
	return services.NewGeoService(client, client, nil)
}
