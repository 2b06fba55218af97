package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the project service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"project-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PROJECT_API_PORT" envDefault:"8295"`
	LogLevel        string        `env:"PROJECT_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"PROJECT_LOG_FORMAT" envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// API Configuration
	APIURL       string `env:"PROJECT_API_URL" envDefault:"http://localhost:8295"`
	ItemsPerPage int    `env:"ITEMS_PER_PAGE" envDefault:"25"`

	// Database
	DatabaseDSN string `env:"DB_POSTGRESQL_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"PROJECT_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath string `env:"PROJECT_LOCAL_STORAGE_PATH"`

	// S3 Storage Configuration
	S3Endpoint     string `env:"PROJECT_S3_ENDPOINT"`
	S3Region       string `env:"PROJECT_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string `env:"PROJECT_S3_BUCKET"`
	S3AccessKeyID  string `env:"PROJECT_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"PROJECT_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"PROJECT_S3_USE_PATH_STYLE" envDefault:"true"`

	// Job queue (background edit/thumbnail workers consume these)
	RedisURL       string `env:"PROJECT_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	JobQueuePrefix string `env:"PROJECT_JOB_QUEUE_PREFIX" envDefault:"video:jobs"`

	// Video editor service (probe + edit execution)
	VideoEditorURL     string        `env:"VIDEO_EDITOR_URL" envDefault:"http://localhost:8296"`
	VideoEditorTimeout time.Duration `env:"VIDEO_EDITOR_TIMEOUT" envDefault:"30s"`

	// Upload limits
	MaxUploadBytes int64 `env:"PROJECT_MAX_UPLOAD_BYTES" envDefault:"524288000"`

	// Edit policy
	MinTrimDuration    float64 `env:"MIN_TRIM_DURATION" envDefault:"2"`
	MinVideoWidth      int     `env:"MIN_VIDEO_WIDTH" envDefault:"320"`
	MinVideoHeight     int     `env:"MIN_VIDEO_HEIGHT" envDefault:"180"`
	MaxVideoWidth      int     `env:"MAX_VIDEO_WIDTH" envDefault:"4096"`
	MaxVideoHeight     int     `env:"MAX_VIDEO_HEIGHT" envDefault:"2160"`
	AllowInterpolation bool    `env:"ALLOW_INTERPOLATION" envDefault:"true"`
	InterpolationLimit int     `env:"INTERPOLATION_LIMIT" envDefault:"1280"`

	// Thumbnails
	DefaultTimelineThumbnails int `env:"DEFAULT_TOTAL_TIMELINE_THUMBNAILS" envDefault:"40"`

	// Codec allow-lists, comma separated ffprobe codec names
	CodecSupportVideo []string `env:"CODEC_SUPPORT_VIDEO" envDefault:"h264,hevc,vp8,vp9,av1"`
	CodecSupportImage []string `env:"CODEC_SUPPORT_IMAGE" envDefault:"png,mjpeg,gif,webp"`
}

// EditPolicy is the read-only numeric policy consumed by the metadata validator.
// It is materialized once from Config so the validator never reaches into
// global configuration.
type EditPolicy struct {
	MinTrimDuration    float64
	MinVideoWidth      int
	MinVideoHeight     int
	MaxVideoWidth      int
	MaxVideoHeight     int
	AllowInterpolation bool
	InterpolationLimit int
}

// codecMimetypes maps supported image codec names to the mimetype stored with
// the thumbnail asset.
var codecMimetypes = map[string]string{
	"png":   "image/png",
	"mjpeg": "image/jpeg",
	"gif":   "image/gif",
	"webp":  "image/webp",
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.APIURL = strings.TrimSuffix(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 500 * 1024 * 1024
	}
	if cfg.ItemsPerPage <= 0 {
		cfg.ItemsPerPage = 25
	}
	if cfg.MinTrimDuration <= 0 {
		return nil, fmt.Errorf("MIN_TRIM_DURATION must be positive")
	}
	if cfg.MinVideoWidth <= 0 || cfg.MinVideoHeight <= 0 {
		return nil, fmt.Errorf("MIN_VIDEO_WIDTH and MIN_VIDEO_HEIGHT must be positive")
	}
	if cfg.MaxVideoWidth < cfg.MinVideoWidth || cfg.MaxVideoHeight < cfg.MinVideoHeight {
		return nil, fmt.Errorf("MAX_VIDEO_WIDTH/HEIGHT must not be below the configured minimums")
	}
	if cfg.DefaultTimelineThumbnails <= 0 {
		return nil, fmt.Errorf("DEFAULT_TOTAL_TIMELINE_THUMBNAILS must be positive")
	}
	return cfg, nil
}

// Policy returns the edit policy value object.
func (c *Config) Policy() EditPolicy {
	return EditPolicy{
		MinTrimDuration:    c.MinTrimDuration,
		MinVideoWidth:      c.MinVideoWidth,
		MinVideoHeight:     c.MinVideoHeight,
		MaxVideoWidth:      c.MaxVideoWidth,
		MaxVideoHeight:     c.MaxVideoHeight,
		AllowInterpolation: c.AllowInterpolation,
		InterpolationLimit: c.InterpolationLimit,
	}
}

// SupportsVideoCodec reports whether the probed codec is accepted for uploads.
func (c *Config) SupportsVideoCodec(codec string) bool {
	return containsFold(c.CodecSupportVideo, codec)
}

// SupportsImageCodec reports whether the probed codec is accepted for
// custom preview thumbnails.
func (c *Config) SupportsImageCodec(codec string) bool {
	return containsFold(c.CodecSupportImage, codec)
}

// ImageCodecMimetype returns the mimetype stored for a supported image codec.
func (c *Config) ImageCodecMimetype(codec string) string {
	if mt, ok := codecMimetypes[strings.ToLower(strings.TrimSpace(codec))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsS3Storage returns true if S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "s3"
}

func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
