package project

// JobKind identifies the class of background work dispatched for a project.
// Each kind owns exactly one processing flag.
type JobKind string

const (
	JobKindEditVideo          JobKind = "edit_video"
	JobKindTimelineThumbnails JobKind = "timeline_thumbnails"
	JobKindPreviewThumbnail   JobKind = "preview_thumbnail"
)

// Flag returns the processing flag a job of this kind holds while it runs.
func (k JobKind) Flag() ProcessingFlag {
	switch k {
	case JobKindEditVideo:
		return FlagVideo
	case JobKindTimelineThumbnails:
		return FlagThumbnailsTimeline
	case JobKindPreviewThumbnail:
		return FlagThumbnailPreview
	}
	return ""
}

// JobParams carries the kind-specific parameters of a dispatched job.
type JobParams struct {
	Changes  *EditRequest `json:"changes,omitempty"`
	Amount   int          `json:"amount,omitempty"`
	Position float64      `json:"position,omitempty"`
}

// Outcome tells the caller how a request against a locked resource resolved.
type Outcome int

const (
	// OutcomeReady means the request was satisfied from current state.
	OutcomeReady Outcome = iota
	// OutcomeBusy means another job holds the flag; the caller should poll.
	OutcomeBusy
	// OutcomeStarted means a new job was dispatched; completion is observed
	// by re-fetching the record.
	OutcomeStarted
)
