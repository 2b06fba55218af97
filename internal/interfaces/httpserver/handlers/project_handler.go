package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"video-server/project-api/internal/config"
	domain "video-server/project-api/internal/domain/project"
	"video-server/project-api/internal/infrastructure/metrics"
	"video-server/project-api/internal/interfaces/httpserver/requests"
	"video-server/project-api/internal/interfaces/httpserver/responses"
	"video-server/project-api/internal/utils/platformerrors"
	"video-server/project-api/utils/projectid"
)

// ProjectHandler exposes the project lifecycle endpoints.
type ProjectHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewProjectHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "project-handler").Logger(),
	}
}

// Create accepts a multipart video upload and creates a new project.
func (h *ProjectHandler) Create(c *gin.Context) {
	data, filename, mimeType, ok := h.readUpload(c)
	if !ok {
		return
	}

	p, err := h.service.Ingest(c.Request.Context(), domain.IngestUpload{
		Data:             data,
		OriginalFilename: filename,
		MimeType:         mimeType,
		RequestAddress:   c.ClientIP(),
	})
	if err != nil {
		metrics.RecordUpload("unknown", "error", int64(len(data)))
		responses.HandleError(c, err, "failed to create project")
		return
	}

	metrics.RecordUpload(p.Metadata.CodecName, "success", p.Metadata.Size)
	c.JSON(http.StatusCreated, responses.NewProjectPayload(h.cfg.APIURL, p))
}

// List returns one page of projects.
func (h *ProjectHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	projects, total, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		responses.HandleError(c, err, "failed to list projects")
		return
	}
	c.JSON(http.StatusOK, responses.NewProjectListPayload(h.cfg.APIURL, projects, page, h.cfg.ItemsPerPage, total))
}

// Get returns one project record.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to get project")
		return
	}
	c.JSON(http.StatusOK, responses.NewProjectPayload(h.cfg.APIURL, p))
}

// Update validates the edit payload and dispatches the edit job.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	var body requests.EditBody
	if err := c.ShouldBindJSON(&body); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"request body must be a JSON edit description", "7f82c4d0-1a96-43be-8d57-e20b9f6a3c15")
		return
	}

	outcome, err := h.service.RequestEdit(c.Request.Context(), id, body.ToDomain())
	if err != nil {
		metrics.RecordJobDispatch(string(domain.JobKindEditVideo), "error")
		responses.HandleError(c, err, "failed to request edit")
		return
	}
	if outcome == domain.OutcomeBusy {
		metrics.RecordBusyResponse("edit")
		c.JSON(http.StatusAccepted, responses.NewProcessingPayload())
		return
	}

	metrics.RecordJobDispatch(string(domain.JobKindEditVideo), "success")
	c.JSON(http.StatusOK, responses.NewProcessingPayload())
}

// Delete removes a project and its assets.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

// Duplicate produces an independent copy of the project.
func (h *ProjectHandler) Duplicate(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	child, outcome, err := h.service.Duplicate(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to duplicate project")
		return
	}
	if outcome == domain.OutcomeBusy {
		metrics.RecordBusyResponse("duplicate")
		c.JSON(http.StatusAccepted, responses.NewProcessingPayload())
		return
	}
	c.JSON(http.StatusCreated, responses.NewProjectPayload(h.cfg.APIURL, child))
}

// Thumbnails serves the thumbnail cache policy: the timeline sequence by
// amount, or the preview by capture position.
func (h *ProjectHandler) Thumbnails(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	switch c.DefaultQuery("type", "timeline") {
	case "timeline":
		amount, err := strconv.Atoi(c.DefaultQuery("amount", "0"))
		if err != nil || amount < 0 {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
				"amount must be a non-negative integer", "d58a03f6-9c21-4e7b-b4d8-61f0a2c9e357")
			return
		}

		timeline, outcome, err := h.service.TimelineThumbnails(c.Request.Context(), id, amount)
		if err != nil {
			responses.HandleError(c, err, "failed to get timeline thumbnails")
			return
		}
		switch outcome {
		case domain.OutcomeBusy:
			metrics.RecordBusyResponse("thumbnails_timeline")
			c.JSON(http.StatusAccepted, responses.NewProcessingPayload())
		case domain.OutcomeStarted:
			metrics.RecordJobDispatch(string(domain.JobKindTimelineThumbnails), "success")
			c.JSON(http.StatusOK, responses.NewProcessingPayload())
		default:
			payload := make([]responses.ThumbnailPayload, 0, len(timeline))
			for i, thumb := range timeline {
				payload = append(payload, responses.ThumbnailPayload{
					Thumbnail: thumb,
					URL:       h.cfg.APIURL + "/v1/projects/" + id + "/raw/thumbnail?type=timeline&index=" + strconv.Itoa(i),
				})
			}
			c.JSON(http.StatusOK, gin.H{"timeline": payload})
		}

	case "preview":
		position, err := strconv.ParseFloat(c.DefaultQuery("position", "0"), 64)
		if err != nil || position < 0 {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
				"position must be a non-negative number", "a936e14b-70dc-482f-95a1-3e8c6b0d72f4")
			return
		}

		preview, outcome, err := h.service.PreviewThumbnail(c.Request.Context(), id, position)
		if err != nil {
			responses.HandleError(c, err, "failed to get preview thumbnail")
			return
		}
		switch outcome {
		case domain.OutcomeBusy:
			metrics.RecordBusyResponse("thumbnail_preview")
			c.JSON(http.StatusAccepted, responses.NewProcessingPayload())
		case domain.OutcomeStarted:
			metrics.RecordJobDispatch(string(domain.JobKindPreviewThumbnail), "success")
			c.JSON(http.StatusOK, responses.NewProcessingPayload())
		default:
			c.JSON(http.StatusOK, gin.H{"preview": responses.ThumbnailPayload{
				Thumbnail: *preview,
				URL:       h.cfg.APIURL + "/v1/projects/" + id + "/raw/thumbnail?type=preview",
			}})
		}

	default:
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"type must be 'timeline' or 'preview'", "48c7f0a2-e591-4d36-b8c4-0762d9e5a13b")
	}
}

// UploadThumbnail stores a custom preview image for the project.
func (h *ProjectHandler) UploadThumbnail(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}
	data, filename, _, ok := h.readUpload(c)
	if !ok {
		return
	}

	thumb, outcome, err := h.service.UploadPreview(c.Request.Context(), id, data, filename)
	if err != nil {
		responses.HandleError(c, err, "failed to upload preview thumbnail")
		return
	}
	if outcome == domain.OutcomeBusy {
		metrics.RecordBusyResponse("thumbnail_preview")
		c.JSON(http.StatusAccepted, responses.NewProcessingPayload())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"preview": responses.ThumbnailPayload{
		Thumbnail: *thumb,
		URL:       h.cfg.APIURL + "/v1/projects/" + id + "/raw/thumbnail?type=preview",
	}})
}

// RawVideo streams the project's video, honoring a single open-ended byte
// range.
func (h *ProjectHandler) RawVideo(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	stream, outcome, err := h.service.RawVideo(c.Request.Context(), id, c.GetHeader("Range"))
	if err != nil {
		responses.HandleError(c, err, "failed to stream video")
		return
	}
	if outcome == domain.OutcomeBusy {
		metrics.RecordBusyResponse("raw_video")
		c.JSON(http.StatusAccepted, responses.NewProcessingPayload())
		return
	}
	defer stream.Body.Close()

	c.Header("Accept-Ranges", "bytes")
	status := http.StatusOK
	if stream.Range != nil {
		status = http.StatusPartialContent
		c.Header("Content-Range", stream.Range.ContentRange())
	}
	c.DataFromReader(status, stream.ContentLength, stream.MimeType, stream.Body, nil)
}

// RawThumbnail streams one thumbnail blob.
func (h *ProjectHandler) RawThumbnail(c *gin.Context) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.DefaultQuery("index", "0"))
	if err != nil || index < 0 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"index must be a non-negative integer", "ef23a950-6b4d-4178-8c0e-d95f72a1b346")
		return
	}

	body, thumb, err := h.service.RawThumbnail(c.Request.Context(), id, c.DefaultQuery("type", "preview"), index)
	if err != nil {
		responses.HandleError(c, err, "failed to stream thumbnail")
		return
	}
	defer body.Close()
	c.DataFromReader(http.StatusOK, thumb.Size, thumb.Mimetype, body, nil)
}

func (h *ProjectHandler) projectID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !projectid.IsValid(id) {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound,
			"project not found", "31be6d04-5f8a-42c7-90e3-a1c86f2d05b9")
		return "", false
	}
	return id, true
}

// readUpload extracts the multipart "file" part and enforces the configured
// size ceiling before buffering.
func (h *ProjectHandler) readUpload(c *gin.Context) (data []byte, filename, mimeType string, ok bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"file is required", "9d14c8e6-2b05-47fa-a3d9-60e7b5f2c481")
		return nil, "", "", false
	}
	defer file.Close()

	if header.Size > h.cfg.MaxUploadBytes {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"file exceeds the maximum upload size", "c02f7b5d-84e1-4a6c-b93f-17d0a6e82c54")
		return nil, "", "", false
	}

	data, err = io.ReadAll(io.LimitReader(file, h.cfg.MaxUploadBytes+1))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read upload")
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal,
			"failed to read upload", "65a1d93c-0e72-4b48-bf05-29c8e7d4a016")
		return nil, "", "", false
	}
	if int64(len(data)) > h.cfg.MaxUploadBytes {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"file exceeds the maximum upload size", "c02f7b5d-84e1-4a6c-b93f-17d0a6e82c54")
		return nil, "", "", false
	}

	return data, header.Filename, header.Header.Get("Content-Type"), true
}
