package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"video-server/project-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.Project{}); err != nil {
		return err
	}
	log.Info().Msg("applied project migrations")
	return nil
}
