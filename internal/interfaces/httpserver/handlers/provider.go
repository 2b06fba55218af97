package handlers

import (
	"github.com/rs/zerolog"

	"video-server/project-api/internal/config"
	domain "video-server/project-api/internal/domain/project"
)

// Provider wires HTTP handlers.
type Provider struct {
	Project *ProjectHandler
}

func NewProvider(cfg *config.Config, service *domain.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Project: NewProjectHandler(cfg, service, log),
	}
}
