package fx

import (
	"context"
	"database/sql"
	"vct-status/internal/config"
	"vct-status/internal/database"
	"vct-status/internal/db"
	"vct-status/internal/logger"
	"vct-status/internal/repository"
	"vct-status/internal/scheduler"
	"vct-status/internal/server"
	"vct-status/internal/service"
	"vct-status/internal/vlr"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideFetcher(client *vlr.Client) vlr.PageFetcher {
	return client
}

func ProvideListScraper(pipeline *service.PipelineService) scheduler.ListScraper {
	return pipeline
}

// closeDatabase releases the SQLite handle when the app stops.
func closeDatabase(lc fx.Lifecycle, sqlDB *sql.DB, logger zerolog.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(database.NewSQLX),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewReferenceRepository),
	fx.Provide(repository.NewRunRepository),
	fx.Provide(repository.NewStatsRepository),
	fx.Provide(repository.NewReadRepository),
	// vlr.gg
	fx.Provide(vlr.NewClient),
	fx.Provide(ProvideFetcher),
	fx.Provide(vlr.NewParser),
	// svc
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewPipelineService),
	fx.Provide(service.NewSetupService),
	fx.Provide(service.NewImageService),
	// serve / watch
	fx.Provide(server.New),
	fx.Provide(ProvideListScraper),
	fx.Provide(scheduler.New),
	fx.Invoke(closeDatabase),
)
