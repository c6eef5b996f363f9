// Package store owns the local event collection.
//
// Events are persisted as a single pretty-printed JSON array. The Store is
// the only component that reads or writes that file; everything else
// receives events by reference and mutates individual fields through them.
package store

import (
	"fmt"
	"strings"
)

// LocalPathPrefix marks an image URL that still points at the local
// filesystem and has not been migrated to the blob store.
const LocalPathPrefix = "./images/"

// Variant names for the three fixed-size image renditions.
const (
	VariantFull  = "full"
	VariantSmall = "small"
	VariantThumb = "thumb"
)

// Event is the unit of synchronization. Fields are flat with
// last-write-wins semantics; the id is immutable once created and is the
// key for all merge/diff operations.
type Event struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	LongDescription string   `json:"long_description,omitempty"`
	EventDate       string   `json:"event_date,omitempty"`
	DisplayFromDate string   `json:"display_from_date,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	GroupID         string   `json:"group_id,omitempty"`

	FullImageURL  string `json:"full_image_url,omitempty"`
	SmallImageURL string `json:"small_image_url,omitempty"`
	ThumbImageURL string `json:"thumb_image_url,omitempty"`

	// LegacyThumbURL exists only so files written by older versions
	// (which used "thumb_url") still load. It is folded into
	// ThumbImageURL on load and never written back.
	LegacyThumbURL string `json:"thumb_url,omitempty"`

	// ImagesUploaded is true only when every non-empty image URL has been
	// replaced by a remote URL by the blob syncer.
	ImagesUploaded bool `json:"images_uploaded_to_s3"`

	// UpdatedNotSubmitted is true whenever the record was created or
	// edited locally since the last successful merge. It is the only
	// signal the merge client's callers use to decide what must be pushed.
	UpdatedNotSubmitted bool `json:"event_updated_not_submitted"`
}

// Validate checks required fields.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

// normalize folds legacy fields into their canonical counterparts.
func (e *Event) normalize() {
	if e.ThumbImageURL == "" && e.LegacyThumbURL != "" {
		e.ThumbImageURL = e.LegacyThumbURL
	}
	e.LegacyThumbURL = ""
}

// ImageURL returns a pointer to the URL field for the named variant, or
// nil for an unknown variant. The pointer lets the blob syncer swap URLs
// in place.
func (e *Event) ImageURL(variant string) *string {
	switch variant {
	case VariantFull:
		return &e.FullImageURL
	case VariantSmall:
		return &e.SmallImageURL
	case VariantThumb:
		return &e.ThumbImageURL
	}
	return nil
}

// HasAnyImage reports whether any image URL field is non-empty.
func (e *Event) HasAnyImage() bool {
	return e.FullImageURL != "" || e.SmallImageURL != "" || e.ThumbImageURL != ""
}

// HasLocalImages reports whether any image URL still carries the
// local-path marker.
func (e *Event) HasLocalImages() bool {
	return IsLocalPath(e.FullImageURL) ||
		IsLocalPath(e.SmallImageURL) ||
		IsLocalPath(e.ThumbImageURL)
}

// IsLocalPath reports whether an image URL value is a local-path marker.
func IsLocalPath(url string) bool {
	return strings.HasPrefix(url, LocalPathPrefix)
}
