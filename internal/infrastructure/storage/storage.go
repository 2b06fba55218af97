// Package storage provides the asset store backends. Both satisfy the domain
// AssetStore contract; the backend is selected at startup from configuration.
package storage

import (
	domain "video-server/project-api/internal/domain/project"
)

var (
	_ domain.AssetStore = (*S3Storage)(nil)
	_ domain.AssetStore = (*LocalStorage)(nil)
)
