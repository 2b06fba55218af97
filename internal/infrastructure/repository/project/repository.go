package project

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "video-server/project-api/internal/domain/project"
	"video-server/project-api/internal/infrastructure/database/entities"
	"video-server/project-api/internal/utils/platformerrors"
)

// flagColumns maps a processing flag to its boolean column. Only values from
// this table ever reach a query, so the column name is never caller input.
var flagColumns = map[domain.ProcessingFlag]string{
	domain.FlagVideo:              "processing_video",
	domain.FlagThumbnailPreview:   "processing_thumbnail_preview",
	domain.FlagThumbnailsTimeline: "processing_thumbnails_timeline",
}

// Repository handles project record persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Project, error) {
	var entity entities.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"project not found",
				err,
				"0f4a7c2d-8b36-49e1-a5d0-6c913e8f2b74",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get project by id",
			err,
			"3b8d1e6f-a274-40c9-95e8-d07f2a64c153",
		)
	}
	p := mapEntity(entity)
	return &p, nil
}

func (r *Repository) List(ctx context.Context, page, perPage int) ([]domain.Project, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Project{}).Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count projects",
			err,
			"7d2f9b41-6e85-4c30-ba97-14f8c0d5e362",
		)
	}

	var rows []entities.Project
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list projects",
			err,
			"9a05e3c7-2d48-4f16-8b3a-c671d94e0f25",
		)
	}

	projects := make([]domain.Project, 0, len(rows))
	for _, entity := range rows {
		projects = append(projects, mapEntity(entity))
	}
	return projects, total, nil
}

func (r *Repository) Insert(ctx context.Context, p *domain.Project) error {
	entity := mapDomain(p)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create project",
			err,
			"c13e7a96-05bd-4f82-9e64-2a7d50c8f319",
		)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Project{}).Error
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete project",
			err,
			"e58b0d24-96fc-4a17-b3e9-7c40a2d681f5",
		)
	}
	return nil
}

// TryAcquire sets the flag column to true only when it currently reads false.
// The conditional update is the whole decision: the database evaluates the
// predicate and the write atomically, so concurrent callers cannot both win.
func (r *Repository) TryAcquire(ctx context.Context, id string, flag domain.ProcessingFlag) (bool, error) {
	column, ok := flagColumns[flag]
	if !ok {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"unknown processing flag",
			nil,
			"f07c3a58-21de-4b96-8f40-a5e19c6d2b83",
		)
	}

	res := r.db.WithContext(ctx).
		Model(&entities.Project{}).
		Where("id = ? AND "+column+" = ?", id, false).
		Update(column, true)
	if res.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to acquire processing flag",
			res.Error,
			"1d96b4e0-73af-45c2-9b08-e62f81a0c547",
		)
	}
	return res.RowsAffected == 1, nil
}

// Release clears the flag and applies the patch in one update, then returns
// the refreshed record.
func (r *Repository) Release(ctx context.Context, id string, flag domain.ProcessingFlag, patch domain.Patch) (*domain.Project, error) {
	column, ok := flagColumns[flag]
	if !ok {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"unknown processing flag",
			nil,
			"6a2e85d1-490c-4f7b-ae36-08b5d17c92f4",
		)
	}

	updates := map[string]any{column: false}
	if patch.Metadata != nil {
		updates["metadata"] = entities.MetadataColumn{VideoMetadata: *patch.Metadata}
	}
	if patch.StorageID != nil {
		updates["storage_id"] = *patch.StorageID
	}
	if patch.Preview != nil {
		updates["preview_thumbnail"] = &entities.ThumbnailColumn{Thumbnail: *patch.Preview}
	}
	if patch.Timeline != nil {
		updates["timeline_thumbnails"] = entities.TimelineColumn(patch.Timeline)
	}

	if err := r.applyUpdates(ctx, id, updates, "failed to release processing flag", "84f01c6e-d53a-47b9-92e7-3c68a5d40b12"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) SetStorageID(ctx context.Context, id, storageID string) (*domain.Project, error) {
	updates := map[string]any{"storage_id": storageID}
	if err := r.applyUpdates(ctx, id, updates, "failed to set storage id", "2c7d94b5-f16e-48a0-bd23-970e4a5c81f6"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) SetPreview(ctx context.Context, id string, preview *domain.Thumbnail) (*domain.Project, error) {
	updates := map[string]any{"preview_thumbnail": &entities.ThumbnailColumn{Thumbnail: *preview}}
	if err := r.applyUpdates(ctx, id, updates, "failed to set preview thumbnail", "b39e62a7-08c4-4d51-9fb0-6e17d28c453a"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) SetTimeline(ctx context.Context, id string, timeline []domain.Thumbnail) (*domain.Project, error) {
	updates := map[string]any{"timeline_thumbnails": entities.TimelineColumn(timeline)}
	if err := r.applyUpdates(ctx, id, updates, "failed to set timeline thumbnails", "5e80c1f3-27b9-46ad-83c6-d94a0b7e612f"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *Repository) applyUpdates(ctx context.Context, id string, updates map[string]any, message, errorUUID string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Project{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			message,
			res.Error,
			errorUUID,
		)
	}
	if res.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"project not found",
			nil,
			errorUUID,
		)
	}
	return nil
}

func mapDomain(p *domain.Project) entities.Project {
	entity := entities.Project{
		ID:               p.ID,
		Filename:         p.Filename,
		OriginalFilename: p.OriginalFilename,
		MimeType:         p.MimeType,
		StorageID:        p.StorageID,
		Metadata:         entities.MetadataColumn{VideoMetadata: p.Metadata},
		RequestAddress:   p.RequestAddress,
		Version:          p.Version,
		ParentID:         p.Parent,

		ProcessingVideo:              p.Processing.Video,
		ProcessingThumbnailPreview:   p.Processing.ThumbnailPreview,
		ProcessingThumbnailsTimeline: p.Processing.ThumbnailsTimeline,

		TimelineThumbnails: entities.TimelineColumn(p.Thumbnails.Timeline),
		CreatedAt:          p.CreateTime,
	}
	if p.Thumbnails.Preview != nil {
		entity.PreviewThumbnail = &entities.ThumbnailColumn{Thumbnail: *p.Thumbnails.Preview}
	}
	return entity
}

func mapEntity(entity entities.Project) domain.Project {
	p := domain.Project{
		ID:               entity.ID,
		Filename:         entity.Filename,
		OriginalFilename: entity.OriginalFilename,
		MimeType:         entity.MimeType,
		StorageID:        entity.StorageID,
		Metadata:         entity.Metadata.VideoMetadata,
		CreateTime:       entity.CreatedAt,
		RequestAddress:   entity.RequestAddress,
		Version:          entity.Version,
		Parent:           entity.ParentID,
		Processing: domain.ProcessingFlags{
			Video:              entity.ProcessingVideo,
			ThumbnailPreview:   entity.ProcessingThumbnailPreview,
			ThumbnailsTimeline: entity.ProcessingThumbnailsTimeline,
		},
		Thumbnails: domain.Thumbnails{
			Timeline: []domain.Thumbnail(entity.TimelineThumbnails),
		},
	}
	if p.Thumbnails.Timeline == nil {
		p.Thumbnails.Timeline = []domain.Thumbnail{}
	}
	if entity.PreviewThumbnail != nil {
		preview := entity.PreviewThumbnail.Thumbnail
		p.Thumbnails.Preview = &preview
	}
	return p
}
