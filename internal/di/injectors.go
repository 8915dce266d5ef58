//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"spc/internal"
	"spc/internal/controllers"
	"spc/internal/providers"
	"spc/internal/services"
	"spc/internal/statistic"
	"spc/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,

		statistic.NewZstdCompressor,
		services.NewValidationService,
		statistic.NewFileManager,
		statistic.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}
