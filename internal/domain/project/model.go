package project

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProcessingFlag names one mutual-exclusion aspect of a project. Each flag is
// held by at most one asynchronous job at a time.
type ProcessingFlag string

const (
	FlagVideo              ProcessingFlag = "video"
	FlagThumbnailPreview   ProcessingFlag = "thumbnail_preview"
	FlagThumbnailsTimeline ProcessingFlag = "thumbnails_timeline"
)

// ProcessingFlags carries the per-aspect lock state persisted on the record.
type ProcessingFlags struct {
	Video              bool `json:"video"`
	ThumbnailPreview   bool `json:"thumbnail_preview"`
	ThumbnailsTimeline bool `json:"thumbnails_timeline"`
}

// Any reports whether any aspect of the project is currently owned by a job.
func (f ProcessingFlags) Any() bool {
	return f.Video || f.ThumbnailPreview || f.ThumbnailsTimeline
}

// Get returns the value of a single flag.
func (f ProcessingFlags) Get(flag ProcessingFlag) bool {
	switch flag {
	case FlagVideo:
		return f.Video
	case FlagThumbnailPreview:
		return f.ThumbnailPreview
	case FlagThumbnailsTimeline:
		return f.ThumbnailsTimeline
	}
	return false
}

// VideoMetadata is the probe snapshot captured at ingestion. A successful edit
// replaces the whole snapshot, it is never mutated field by field.
type VideoMetadata struct {
	CodecName     string  `json:"codec_name"`
	CodecLongName string  `json:"codec_long_name,omitempty"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Duration      float64 `json:"duration"`
	BitRate       int64   `json:"bit_rate"`
	NbFrames      int64   `json:"nb_frames"`
	RFrameRate    string  `json:"r_frame_rate"`
	FormatName    string  `json:"format_name"`
	Size          int64   `json:"size"`
}

// PreviewSource records where a preview thumbnail came from: a capture
// position in seconds, or "custom" for uploaded images. It marshals as either
// a JSON number or the string "custom".
type PreviewSource struct {
	Custom   bool
	Position float64
}

func (s PreviewSource) MarshalJSON() ([]byte, error) {
	if s.Custom {
		return json.Marshal("custom")
	}
	return json.Marshal(s.Position)
}

func (s *PreviewSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str != "custom" {
			return fmt.Errorf("invalid preview source %q", str)
		}
		s.Custom = true
		s.Position = 0
		return nil
	}
	s.Custom = false
	return json.Unmarshal(data, &s.Position)
}

// Thumbnail describes a derived image asset owned by exactly one project.
type Thumbnail struct {
	Filename  string         `json:"filename"`
	StorageID string         `json:"storage_id"`
	Mimetype  string         `json:"mimetype"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Size      int64          `json:"size"`
	Position  *PreviewSource `json:"position,omitempty"`
}

// Thumbnails groups a project's derived thumbnail assets. Timeline order is
// capture order.
type Thumbnails struct {
	Timeline []Thumbnail `json:"timeline"`
	Preview  *Thumbnail  `json:"preview"`
}

// Project is the persisted unit representing one uploaded video and its
// derived assets.
type Project struct {
	ID               string          `json:"_id"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"original_filename"`
	MimeType         string          `json:"mime_type"`
	StorageID        string          `json:"storage_id"`
	Metadata         VideoMetadata   `json:"metadata"`
	CreateTime       time.Time       `json:"create_time"`
	RequestAddress   string          `json:"request_address,omitempty"`
	Version          int             `json:"version"`
	Parent           string          `json:"parent,omitempty"`
	Processing       ProcessingFlags `json:"processing"`
	Thumbnails       Thumbnails      `json:"thumbnails"`
}

// Trim cuts the video to the [Start, End) window, in seconds.
type Trim struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Crop cuts a Width x Height frame with its top-left corner at (X, Y).
type Crop struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// EditRequest is the transient description of a non-destructive edit. Zero
// Rotate / Scale and nil Trim / Crop mean the operation was not requested.
type EditRequest struct {
	Trim   *Trim `json:"trim,omitempty"`
	Rotate int   `json:"rotate,omitempty"`
	Scale  int   `json:"scale,omitempty"`
	Crop   *Crop `json:"crop,omitempty"`
}

// IsEmpty reports whether the request carries no operation at all.
func (r EditRequest) IsEmpty() bool {
	return r.Trim == nil && r.Crop == nil && r.Rotate == 0 && r.Scale == 0
}

// IngestUpload carries the raw bytes and request context of a new upload.
type IngestUpload struct {
	Data             []byte
	OriginalFilename string
	MimeType         string
	RequestAddress   string
}
