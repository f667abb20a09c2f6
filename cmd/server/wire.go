//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/lingo-services-playlist/internal/controllers"
	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-playlist/internal/infrastructure/database"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories"
	"github.com/bionicotaku/lingo-services-playlist/internal/repositories/memstore"
	"github.com/bionicotaku/lingo-services-playlist/internal/server"
	"github.com/bionicotaku/lingo-services-playlist/internal/services"
	"github.com/bionicotaku/lingo-services-playlist/internal/tasks/dispatcher"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

var appSet = wire.NewSet(
	configloader.ProviderSet,
	dispatcher.ProviderSet,
	services.ProviderSet,
	controllers.ProviderSet,
	server.ProviderSet,
	newApp,
)

var postgresSet = wire.NewSet(
	database.ProviderSet,
	repositories.ProviderSet,
	wire.Bind(new(services.PlaylistViewRepo), new(*repositories.PlaylistViewRepository)),
	wire.Bind(new(services.PlaylistStatsRepo), new(*repositories.PlaylistStatsRepository)),
	wire.Bind(new(services.PlaylistRepo), new(*repositories.PlaylistRepository)),
)

var memorySet = wire.NewSet(
	memstore.ProviderSet,
	wire.Bind(new(services.PlaylistViewRepo), new(*memstore.ViewRepository)),
	wire.Bind(new(services.PlaylistStatsRepo), new(*memstore.StatsRepository)),
	wire.Bind(new(services.PlaylistRepo), new(*memstore.PlaylistRepository)),
)

// wirePostgresApp builds the application backed by PostgreSQL.
func wirePostgresApp(context.Context, *configloader.Loader, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(appSet, postgresSet))
}

// wireMemoryApp builds the application backed by the in-process store.
func wireMemoryApp(context.Context, *configloader.Loader, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(appSet, memorySet))
}
