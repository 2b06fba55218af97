//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"video-server/project-api/internal/config"
	domain "video-server/project-api/internal/domain/project"
	"video-server/project-api/internal/infrastructure/database"
	"video-server/project-api/internal/infrastructure/dispatch"
	"video-server/project-api/internal/infrastructure/logger"
	"video-server/project-api/internal/infrastructure/probe"
	repo "video-server/project-api/internal/infrastructure/repository/project"
	"video-server/project-api/internal/interfaces/httpserver"
)

var projectSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(domain.Repository), new(*repo.Repository)),
	provideStorage,
	probe.NewClient,
	wire.Bind(new(domain.Prober), new(*probe.Client)),
	dispatch.NewRedisDispatcher,
	wire.Bind(new(domain.Dispatcher), new(*dispatch.RedisDispatcher)),
	domain.NewService,
)

// BuildApplication assembles the project API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newGormDB,
		projectSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
