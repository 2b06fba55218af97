package v1

import (
	"github.com/gin-gonic/gin"

	"video-server/project-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	projects := group.Group("/projects")
	projects.POST("", r.handlers.Project.Create)
	projects.GET("", r.handlers.Project.List)
	projects.GET("/:id", r.handlers.Project.Get)
	projects.PUT("/:id", r.handlers.Project.Update)
	projects.DELETE("/:id", r.handlers.Project.Delete)
	projects.POST("/:id/duplicate", r.handlers.Project.Duplicate)
	projects.GET("/:id/thumbnails", r.handlers.Project.Thumbnails)
	projects.POST("/:id/thumbnails", r.handlers.Project.UploadThumbnail)
	projects.GET("/:id/raw/video", r.handlers.Project.RawVideo)
	projects.GET("/:id/raw/thumbnail", r.handlers.Project.RawThumbnail)
}
