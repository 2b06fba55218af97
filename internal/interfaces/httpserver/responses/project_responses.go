package responses

import (
	"fmt"

	domain "video-server/project-api/internal/domain/project"
)

// ThumbnailPayload decorates a thumbnail with its retrieval URL.
type ThumbnailPayload struct {
	domain.Thumbnail
	URL string `json:"url"`
}

// ThumbnailsPayload mirrors the project thumbnail group with URLs attached.
type ThumbnailsPayload struct {
	Timeline []ThumbnailPayload `json:"timeline"`
	Preview  *ThumbnailPayload  `json:"preview"`
}

// ProjectPayload is the outward project representation: the record plus the
// raw content URLs derived from the public API URL.
type ProjectPayload struct {
	domain.Project
	URL        string            `json:"url"`
	Thumbnails ThumbnailsPayload `json:"thumbnails"`
}

// NewProjectPayload decorates a project record with its content URLs.
func NewProjectPayload(apiURL string, p *domain.Project) ProjectPayload {
	payload := ProjectPayload{
		Project: *p,
		URL:     fmt.Sprintf("%s/v1/projects/%s/raw/video", apiURL, p.ID),
		Thumbnails: ThumbnailsPayload{
			Timeline: make([]ThumbnailPayload, 0, len(p.Thumbnails.Timeline)),
		},
	}
	for i, thumb := range p.Thumbnails.Timeline {
		payload.Thumbnails.Timeline = append(payload.Thumbnails.Timeline, ThumbnailPayload{
			Thumbnail: thumb,
			URL:       fmt.Sprintf("%s/v1/projects/%s/raw/thumbnail?type=timeline&index=%d", apiURL, p.ID, i),
		})
	}
	if p.Thumbnails.Preview != nil {
		payload.Thumbnails.Preview = &ThumbnailPayload{
			Thumbnail: *p.Thumbnails.Preview,
			URL:       fmt.Sprintf("%s/v1/projects/%s/raw/thumbnail?type=preview", apiURL, p.ID),
		}
	}
	return payload
}

// ListMeta is the pagination envelope metadata.
type ListMeta struct {
	Page       int   `json:"page"`
	MaxResults int   `json:"max_results"`
	Total      int64 `json:"total"`
}

// ProjectListPayload is the paginated listing envelope.
type ProjectListPayload struct {
	Items []ProjectPayload `json:"_items"`
	Meta  ListMeta         `json:"_meta"`
}

// NewProjectListPayload decorates one listing page.
func NewProjectListPayload(apiURL string, projects []domain.Project, page, perPage int, total int64) ProjectListPayload {
	items := make([]ProjectPayload, 0, len(projects))
	for i := range projects {
		items = append(items, NewProjectPayload(apiURL, &projects[i]))
	}
	return ProjectListPayload{
		Items: items,
		Meta:  ListMeta{Page: page, MaxResults: perPage, Total: total},
	}
}

// ProcessingPayload tells the caller a background job owns the resource or
// was just started; completion is observed by re-fetching the record.
type ProcessingPayload struct {
	Processing bool `json:"processing"`
}

// NewProcessingPayload returns the standard processing body.
func NewProcessingPayload() ProcessingPayload {
	return ProcessingPayload{Processing: true}
}
