package project

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"video-server/project-api/internal/config"
	"video-server/project-api/internal/utils/platformerrors"
	"video-server/project-api/utils/projectid"
)

// Patch carries the result mutations a finished job applies when its
// processing flag is released. Nil fields are left untouched; Timeline
// replaces the whole sequence when non-nil.
type Patch struct {
	Metadata  *VideoMetadata
	StorageID *string
	Preview   *Thumbnail
	Timeline  []Thumbnail
}

// Repository defines the atomic persistence operations the engine needs.
// TryAcquire and Release are the processing lock: both are single conditional
// updates executed inside the store, never read-then-write from client memory.
type Repository interface {
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, page, perPage int) ([]Project, int64, error)
	Insert(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error

	// TryAcquire sets the flag to true only if it currently reads false and
	// reports whether the caller now owns it.
	TryAcquire(ctx context.Context, id string, flag ProcessingFlag) (bool, error)
	// Release clears the flag and applies the patch in one update.
	Release(ctx context.Context, id string, flag ProcessingFlag, patch Patch) (*Project, error)

	SetStorageID(ctx context.Context, id, storageID string) (*Project, error)
	SetPreview(ctx context.Context, id string, preview *Thumbnail) (*Project, error)
	SetTimeline(ctx context.Context, id string, timeline []Thumbnail) (*Project, error)
}

// AssetStore defines binary blob operations scoped by opaque storage keys.
type AssetStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	DeleteSubtree(ctx context.Context, prefix string) error
}

// Prober extracts codec, geometry and duration metadata from raw bytes.
type Prober interface {
	Probe(ctx context.Context, data []byte) (*VideoMetadata, error)
}

// Dispatcher hands a job to an out-of-band worker. Fire and forget: the
// worker eventually releases the processing flag through the repository.
type Dispatcher interface {
	Submit(ctx context.Context, kind JobKind, snapshot *Project, params JobParams) error
}

// Service orchestrates the project lifecycle: ingestion, edit dispatch,
// duplication, thumbnail policy and raw content delivery.
type Service struct {
	cfg        *config.Config
	policy     config.EditPolicy
	repo       Repository
	store      AssetStore
	prober     Prober
	dispatcher Dispatcher
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(cfg *config.Config, repo Repository, store AssetStore, prober Prober, dispatcher Dispatcher, log zerolog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		policy:     cfg.Policy(),
		repo:       repo,
		store:      store,
		prober:     prober,
		dispatcher: dispatcher,
		log:        log.With().Str("component", "project-service").Logger(),
		now:        time.Now,
	}
}

func subtreeKey(id string) string {
	return "projects/" + id + "/"
}

func videoKey(id, filename string) string {
	return "projects/" + id + "/" + filename
}

func thumbnailKey(id, filename string) string {
	return "projects/" + id + "/thumbnails/" + filename
}

// Ingest probes the uploaded bytes, persists a new project record and writes
// the primary blob. The record and blob are created in two steps; a failure
// in either rolls the other back so no half-ingested project survives.
func (s *Service) Ingest(ctx context.Context, upload IngestUpload) (*Project, error) {
	if len(upload.Data) == 0 {
		return nil, platformerrors.NewValidationError("file", "file is empty")
	}
	if int64(len(upload.Data)) > s.cfg.MaxUploadBytes {
		return nil, platformerrors.NewValidationError("file",
			fmt.Sprintf("file exceeds max size of %d bytes", s.cfg.MaxUploadBytes))
	}

	meta, err := s.prober.Probe(ctx, upload.Data)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "probe upload")
	}
	if !s.cfg.SupportsVideoCodec(meta.CodecName) {
		return nil, platformerrors.NewValidationError("file",
			fmt.Sprintf("Codec: '%s' is not supported.", meta.CodecName))
	}

	mimeType := strings.TrimSpace(upload.MimeType)
	if mimeType == "" {
		mimeType = mimetype.Detect(upload.Data).String()
	}

	p := &Project{
		ID:               projectid.New(),
		Filename:         projectid.NewFilename(fileExt(upload.OriginalFilename)),
		OriginalFilename: upload.OriginalFilename,
		MimeType:         mimeType,
		Metadata:         *meta,
		CreateTime:       s.now().UTC(),
		RequestAddress:   upload.RequestAddress,
		Version:          1,
		Thumbnails:       Thumbnails{Timeline: []Thumbnail{}},
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	storageID := videoKey(p.ID, p.Filename)
	if err := s.store.Put(ctx, storageID, bytes.NewReader(upload.Data), int64(len(upload.Data)), mimeType); err != nil {
		if derr := s.repo.Delete(ctx, p.ID); derr != nil {
			s.log.Error().Err(derr).Str("project_id", p.ID).Msg("rollback record after failed blob write")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"store uploaded video", err, "3f6b2a91-08de-47c3-9e44-5b0f1c7d8a21")
	}

	updated, err := s.repo.SetStorageID(ctx, p.ID, storageID)
	if err != nil {
		if derr := s.store.DeleteSubtree(ctx, subtreeKey(p.ID)); derr != nil {
			s.log.Error().Err(derr).Str("project_id", p.ID).Msg("rollback blobs after failed storage_id update")
		}
		if derr := s.repo.Delete(ctx, p.ID); derr != nil {
			s.log.Error().Err(derr).Str("project_id", p.ID).Msg("rollback record after failed storage_id update")
		}
		return nil, err
	}

	s.log.Info().Str("project_id", updated.ID).Str("codec", meta.CodecName).Int64("bytes", meta.Size).Msg("project ingested")
	return updated, nil
}

// Get returns one project record.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of project records plus the total count.
func (s *Service) List(ctx context.Context, page int) ([]Project, int64, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.List(ctx, page, s.cfg.ItemsPerPage)
}

// Delete removes the project record and its whole asset subtree.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSubtree(ctx, subtreeKey(p.ID)); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"delete project assets", err, "b4c0a7d2-5e19-4f86-a3c2-90d1e6f47b58")
	}
	return s.repo.Delete(ctx, id)
}

// RequestEdit validates the edit against current metadata, acquires the video
// processing flag and dispatches the edit job. The earlier read of the flag
// is only a fast path; the acquire itself is the atomic decision point.
func (s *Service) RequestEdit(ctx context.Context, id string, req EditRequest) (Outcome, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return OutcomeReady, err
	}
	if p.Processing.Video {
		return OutcomeBusy, nil
	}

	if err := ValidateEdit(p.Metadata, req, s.policy); err != nil {
		return OutcomeReady, err
	}

	return s.dispatch(ctx, p, JobKindEditVideo, JobParams{Changes: &req})
}

// Duplicate produces an independent child project: a deep physical copy of
// the parent's primary blob and every thumbnail. Either the child ends up
// fully formed or no trace of it remains.
//
// The parent is only read during the copy, so no flag is taken on it; the
// precondition is that nothing is mutating the parent when the copy starts.
func (s *Service) Duplicate(ctx context.Context, id string) (*Project, Outcome, error) {
	parent, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, OutcomeReady, err
	}
	if parent.Processing.Any() {
		return nil, OutcomeBusy, nil
	}

	child := NewChildBuilder(parent, projectid.New(), s.now().UTC()).Build()
	if err := s.repo.Insert(ctx, child); err != nil {
		return nil, OutcomeReady, err
	}

	storageID := videoKey(child.ID, child.Filename)
	if err := s.copyBlob(ctx, parent.StorageID, storageID, child.MimeType); err != nil {
		if derr := s.repo.Delete(ctx, child.ID); derr != nil {
			s.log.Error().Err(derr).Str("project_id", child.ID).Msg("rollback child record after failed video copy")
		}
		return nil, OutcomeReady, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"copy project video", err, "8e51c9f4-27ab-4d60-b1e3-fc2d7a09e635")
	}

	child, err = s.copyDerivedAssets(ctx, parent, child, storageID)
	if err != nil {
		if derr := s.store.DeleteSubtree(ctx, subtreeKey(child.ID)); derr != nil {
			s.log.Error().Err(derr).Str("project_id", child.ID).Msg("rollback child blobs after failed duplication")
		}
		if derr := s.repo.Delete(ctx, child.ID); derr != nil {
			s.log.Error().Err(derr).Str("project_id", child.ID).Msg("rollback child record after failed duplication")
		}
		return nil, OutcomeReady, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"copy project assets", err, "d2a94b07-63ce-45f1-8b2a-1e7f50c3d986")
	}

	s.log.Info().Str("project_id", child.ID).Str("parent_id", parent.ID).Int("version", child.Version).Msg("project duplicated")
	return child, OutcomeReady, nil
}

// copyDerivedAssets copies the storage id, preview and timeline thumbnails
// onto the freshly inserted child. The timeline is replaced as a whole, never
// element-wise, so a failure cannot leave a partially updated sequence.
func (s *Service) copyDerivedAssets(ctx context.Context, parent, child *Project, storageID string) (*Project, error) {
	child, err := s.repo.SetStorageID(ctx, child.ID, storageID)
	if err != nil {
		return child, err
	}

	if src := parent.Thumbnails.Preview; src != nil {
		copied := *src
		copied.StorageID = thumbnailKey(child.ID, src.Filename)
		if err := s.copyBlob(ctx, src.StorageID, copied.StorageID, src.Mimetype); err != nil {
			return child, err
		}
		if child, err = s.repo.SetPreview(ctx, child.ID, &copied); err != nil {
			return child, err
		}
	}

	if len(parent.Thumbnails.Timeline) > 0 {
		timeline := make([]Thumbnail, 0, len(parent.Thumbnails.Timeline))
		for _, src := range parent.Thumbnails.Timeline {
			copied := src
			copied.StorageID = thumbnailKey(child.ID, src.Filename)
			if err := s.copyBlob(ctx, src.StorageID, copied.StorageID, src.Mimetype); err != nil {
				return child, err
			}
			timeline = append(timeline, copied)
		}
		if child, err = s.repo.SetTimeline(ctx, child.ID, timeline); err != nil {
			return child, err
		}
	}

	return child, nil
}

// copyBlob streams one blob to a new key. The source reader is closed on
// every path.
func (s *Service) copyBlob(ctx context.Context, srcKey, dstKey, contentType string) error {
	reader, err := s.store.Get(ctx, srcKey)
	if err != nil {
		return err
	}
	defer reader.Close()
	return s.store.Put(ctx, dstKey, reader, -1, contentType)
}

// TimelineThumbnails applies the timeline cache policy: return the cached
// sequence when the requested amount matches it, otherwise lock and dispatch
// a regeneration that replaces the sequence wholesale.
func (s *Service) TimelineThumbnails(ctx context.Context, id string, amount int) ([]Thumbnail, Outcome, error) {
	if amount <= 0 {
		amount = s.cfg.DefaultTimelineThumbnails
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, OutcomeReady, err
	}
	if p.Processing.ThumbnailsTimeline {
		return nil, OutcomeBusy, nil
	}
	if amount == len(p.Thumbnails.Timeline) {
		return p.Thumbnails.Timeline, OutcomeReady, nil
	}

	outcome, err := s.dispatch(ctx, p, JobKindTimelineThumbnails, JobParams{Amount: amount})
	return nil, outcome, err
}

// PreviewThumbnail applies the preview capture policy: a cached preview whose
// capture position equals the request is returned unchanged; otherwise a
// capture job is dispatched for the position.
func (s *Service) PreviewThumbnail(ctx context.Context, id string, position float64) (*Thumbnail, Outcome, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, OutcomeReady, err
	}
	if p.Processing.ThumbnailPreview {
		return nil, OutcomeBusy, nil
	}

	if cached := p.Thumbnails.Preview; cached != nil && cached.Position != nil &&
		!cached.Position.Custom && cached.Position.Position == position {
		return cached, OutcomeReady, nil
	}

	if position > p.Metadata.Duration {
		return nil, OutcomeReady, platformerrors.NewValidationError("position",
			fmt.Sprintf("requested position %g is more than video's duration %g", position, p.Metadata.Duration))
	}

	outcome, err := s.dispatch(ctx, p, JobKindPreviewThumbnail, JobParams{Position: position})
	return nil, outcome, err
}

// UploadPreview stores a custom preview image. The new reference is recorded
// durably before the superseded blob is deleted, so a crash between the two
// steps leaves at worst an orphaned old blob, never a dangling reference.
func (s *Service) UploadPreview(ctx context.Context, id string, data []byte, originalFilename string) (*Thumbnail, Outcome, error) {
	if len(data) == 0 {
		return nil, OutcomeReady, platformerrors.NewValidationError("file", "file is empty")
	}

	meta, err := s.prober.Probe(ctx, data)
	if err != nil {
		return nil, OutcomeReady, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "probe thumbnail upload")
	}
	if !s.cfg.SupportsImageCodec(meta.CodecName) {
		return nil, OutcomeReady, platformerrors.NewValidationError("file",
			fmt.Sprintf("Codec: '%s' is not supported.", meta.CodecName))
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, OutcomeReady, err
	}
	if p.Processing.ThumbnailPreview {
		return nil, OutcomeBusy, nil
	}

	base := strings.TrimSuffix(p.Filename, path.Ext(p.Filename))
	filename := fmt.Sprintf("%s_preview-custom.%s", base, fileExt(originalFilename))
	mimeType := s.cfg.ImageCodecMimetype(meta.CodecName)
	storageID := thumbnailKey(p.ID, filename)

	if err := s.store.Put(ctx, storageID, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return nil, OutcomeReady, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"store preview thumbnail", err, "6c8d0e35-91f2-4ab7-bc64-2f5a3d7e8109")
	}

	thumb := &Thumbnail{
		Filename:  filename,
		StorageID: storageID,
		Mimetype:  mimeType,
		Width:     meta.Width,
		Height:    meta.Height,
		Size:      meta.Size,
		Position:  &PreviewSource{Custom: true},
	}

	previous := p.Thumbnails.Preview
	if _, err := s.repo.SetPreview(ctx, p.ID, thumb); err != nil {
		return nil, OutcomeReady, err
	}

	if previous != nil && previous.StorageID != storageID {
		if err := s.store.Delete(ctx, previous.StorageID); err != nil {
			s.log.Warn().Err(err).Str("project_id", p.ID).Str("storage_id", previous.StorageID).
				Msg("delete superseded preview blob")
		}
	}

	return thumb, OutcomeReady, nil
}

// RawVideo resolves the raw content request into a stream descriptor,
// honoring a single open-ended byte range. Retrieval is refused while an
// edit owns the video so no stale or partial content is served.
func (s *Service) RawVideo(ctx context.Context, id, rangeSpec string) (*VideoStream, Outcome, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, OutcomeReady, err
	}
	if p.Processing.Video {
		return nil, OutcomeBusy, nil
	}

	length := p.Metadata.Size
	br, err := ParseRange(rangeSpec, length)
	if err != nil {
		return nil, OutcomeReady, err
	}

	if br == nil {
		body, err := s.store.Get(ctx, p.StorageID)
		if err != nil {
			return nil, OutcomeReady, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
				"read project video", err, "a1f7e2c8-4b05-49d3-8762-ec91d0b35f4a")
		}
		return &VideoStream{Body: body, MimeType: p.MimeType, ContentLength: length}, OutcomeReady, nil
	}

	body, err := s.store.GetRange(ctx, p.StorageID, br.Start, br.Chunksize())
	if err != nil {
		return nil, OutcomeReady, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"read project video range", err, "0d3b8f61-7a2e-4c59-9e08-b5f4c17a26d3")
	}
	return &VideoStream{Body: body, MimeType: p.MimeType, ContentLength: br.Chunksize(), Range: br}, OutcomeReady, nil
}

// RawThumbnail streams one thumbnail blob: the preview, or a timeline entry
// by index.
func (s *Service) RawThumbnail(ctx context.Context, id, kind string, index int) (io.ReadCloser, *Thumbnail, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var thumb *Thumbnail
	switch kind {
	case "preview":
		if p.Thumbnails.Preview == nil {
			return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				"project has no preview thumbnail", nil, "5e92c4a7-1d38-46fb-8c50-73a6b0e9d214")
		}
		thumb = p.Thumbnails.Preview
	case "timeline":
		if index < 0 || index >= len(p.Thumbnails.Timeline) {
			return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
				"timeline thumbnail index out of range", nil, "9c06f8b3-e54a-4721-bd19-84d2a7c5f063")
		}
		thumb = &p.Thumbnails.Timeline[index]
	default:
		return nil, nil, platformerrors.NewValidationError("type", "must be 'preview' or 'timeline'")
	}

	body, err := s.store.Get(ctx, thumb.StorageID)
	if err != nil {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"read thumbnail blob", err, "e7b1d05c-3a84-4962-bf37-06c9e2f5a817")
	}
	return body, thumb, nil
}

// dispatch acquires the job's flag via the repository's compare-and-set and
// submits the work with a snapshot reflecting the held flag. A failed submit
// releases the flag again so the project is not left wedged.
func (s *Service) dispatch(ctx context.Context, p *Project, kind JobKind, params JobParams) (Outcome, error) {
	acquired, err := s.repo.TryAcquire(ctx, p.ID, kind.Flag())
	if err != nil {
		return OutcomeReady, err
	}
	if !acquired {
		return OutcomeBusy, nil
	}

	snapshot := *p
	switch kind.Flag() {
	case FlagVideo:
		snapshot.Processing.Video = true
	case FlagThumbnailPreview:
		snapshot.Processing.ThumbnailPreview = true
	case FlagThumbnailsTimeline:
		snapshot.Processing.ThumbnailsTimeline = true
	}

	if err := s.dispatcher.Submit(ctx, kind, &snapshot, params); err != nil {
		if _, rerr := s.repo.Release(ctx, p.ID, kind.Flag(), Patch{}); rerr != nil {
			s.log.Error().Err(rerr).Str("project_id", p.ID).Str("kind", string(kind)).
				Msg("release flag after failed dispatch")
		}
		return OutcomeReady, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"dispatch job", err, "42d7f9a0-8c15-4be6-97d3-5a0b6e2c81f4")
	}

	s.log.Info().Str("project_id", p.ID).Str("kind", string(kind)).Msg("job dispatched")
	return OutcomeStarted, nil
}

func fileExt(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "mp4"
	}
	return ext
}
