package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"video-server/project-api/internal/config"
	domain "video-server/project-api/internal/domain/project"
	"video-server/project-api/internal/infrastructure/database"
	"video-server/project-api/internal/infrastructure/dispatch"
	"video-server/project-api/internal/infrastructure/logger"
	"video-server/project-api/internal/infrastructure/probe"
	repo "video-server/project-api/internal/infrastructure/repository/project"
	"video-server/project-api/internal/infrastructure/storage"
	"video-server/project-api/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	assetStore, err := provideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	dispatcher, err := dispatch.NewRedisDispatcher(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize job dispatcher")
	}
	defer dispatcher.Close()

	prober := probe.NewClient(cfg, log)

	projectRepository := repo.NewRepository(db)
	projectService := domain.NewService(cfg, projectRepository, assetStore, prober, dispatcher, log)

	httpServer := httpserver.New(cfg, log, projectService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideStorage creates the appropriate storage backend based on configuration.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.AssetStore, error) {
	if cfg.IsLocalStorage() {
		return storage.NewLocalStorage(cfg, log)
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
