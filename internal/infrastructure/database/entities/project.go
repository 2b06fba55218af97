package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	domain "video-server/project-api/internal/domain/project"
)

// Project is the persisted row behind a project record. The probe metadata and
// thumbnail references are stored as jsonb documents; the three processing
// flags are plain boolean columns so lock acquisition can be a single
// conditional update.
type Project struct {
	ID               string         `gorm:"type:varchar(40);primaryKey"`
	Filename         string         `gorm:"type:varchar(64);not null"`
	OriginalFilename string         `gorm:"type:varchar(255);not null"`
	MimeType         string         `gorm:"type:varchar(64);not null"`
	StorageID        string         `gorm:"type:varchar(255)"`
	Metadata         MetadataColumn `gorm:"type:jsonb;not null"`
	RequestAddress   string         `gorm:"type:varchar(64)"`
	Version          int            `gorm:"not null;default:1"`
	ParentID         string         `gorm:"type:varchar(40);index"`

	ProcessingVideo              bool `gorm:"not null;default:false"`
	ProcessingThumbnailPreview   bool `gorm:"not null;default:false"`
	ProcessingThumbnailsTimeline bool `gorm:"not null;default:false"`

	PreviewThumbnail   *ThumbnailColumn `gorm:"type:jsonb"`
	TimelineThumbnails TimelineColumn   `gorm:"type:jsonb;not null;default:'[]'"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// MetadataColumn stores a probe metadata snapshot as jsonb.
type MetadataColumn struct {
	domain.VideoMetadata
}

func (c MetadataColumn) Value() (driver.Value, error) {
	return jsonValue(c.VideoMetadata)
}

func (c *MetadataColumn) Scan(src any) error {
	return jsonScan(src, &c.VideoMetadata)
}

// ThumbnailColumn stores a single thumbnail reference as jsonb.
type ThumbnailColumn struct {
	domain.Thumbnail
}

func (c ThumbnailColumn) Value() (driver.Value, error) {
	return jsonValue(c.Thumbnail)
}

func (c *ThumbnailColumn) Scan(src any) error {
	return jsonScan(src, &c.Thumbnail)
}

// TimelineColumn stores the ordered timeline thumbnail sequence as jsonb.
type TimelineColumn []domain.Thumbnail

func (c TimelineColumn) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return jsonValue([]domain.Thumbnail(c))
}

func (c *TimelineColumn) Scan(src any) error {
	return jsonScan(src, (*[]domain.Thumbnail)(c))
}

func jsonValue(v any) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func jsonScan(src any, dst any) error {
	switch data := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
