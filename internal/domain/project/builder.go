package project

import "time"

// ChildBuilder constructs a duplicate record from a parent snapshot plus
// overrides. The parent is never mutated; the built child carries no identity
// fields until the repository and asset store assign them.
type ChildBuilder struct {
	parent *Project
	id     string
	now    time.Time
}

// NewChildBuilder starts a duplication of parent under the given fresh id.
func NewChildBuilder(parent *Project, id string, now time.Time) *ChildBuilder {
	return &ChildBuilder{parent: parent, id: id, now: now}
}

// Build returns the child record: same filename, mime type and metadata
// snapshot as the parent, no storage id yet, empty thumbnails, version bumped
// by one and lineage pointing at the parent.
func (b *ChildBuilder) Build() *Project {
	return &Project{
		ID:               b.id,
		Filename:         b.parent.Filename,
		OriginalFilename: b.parent.OriginalFilename,
		MimeType:         b.parent.MimeType,
		StorageID:        "",
		Metadata:         b.parent.Metadata,
		CreateTime:       b.now,
		RequestAddress:   b.parent.RequestAddress,
		Version:          b.parent.Version + 1,
		Parent:           b.parent.ID,
		Processing:       ProcessingFlags{},
		Thumbnails:       Thumbnails{Timeline: []Thumbnail{}},
	}
}
