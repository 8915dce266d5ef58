package internal

import (
	"net/http"
	"spc/internal/controllers"
	"spc/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/validate", http.HandlerFunc(apiController.Validate))
	routers.Post("/normalize", http.HandlerFunc(apiController.Normalize))
	routers.Get("/stats", http.HandlerFunc(apiController.GetStats))
	return routers
}
