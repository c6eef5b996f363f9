// Package workflow computes which operations are currently legal given
// the event collection and auth state.
//
// It is a pure function over a store snapshot; no UI is assumed. Any
// front end (the CLI's status command, a future GUI) can call Allowed and
// render the result however it likes.
package workflow

import "github.com/eventdeck/eventdeck/internal/store"

// Actions enumerates the operations a caller may currently perform.
type Actions struct {
	AddEvent      bool
	EditEvent     bool
	DeleteEvent   bool
	ProcessImages bool
	UploadImages  bool
	Merge         bool
	Sync          bool

	// PendingMerge is how many events are flagged as updated but not
	// yet submitted.
	PendingMerge int

	// MergeBlockedReason explains why Merge is false, for display.
	MergeBlockedReason string
}

// Allowed derives the permitted operations from the event collection,
// the currently selected event id (empty for none), and whether a bearer
// token is held.
func Allowed(events []*store.Event, currentID string, authed bool) Actions {
	a := Actions{AddEvent: true}

	var current *store.Event
	for _, e := range events {
		if e.ID == currentID {
			current = e
			break
		}
	}

	if current != nil {
		a.EditEvent = true
		a.DeleteEvent = true
		// Images only make sense once the event has real content.
		a.ProcessImages = current.Title != "" && current.EventDate != ""
	}

	for _, e := range events {
		if e.HasLocalImages() {
			a.UploadImages = true
			break
		}
	}

	a.Sync = authed
	a.Merge, a.PendingMerge, a.MergeBlockedReason = canMerge(events, authed)
	return a
}

// canMerge enforces the merge precondition: authenticated, at least one
// event needs submission, and every pending event that has images has
// them uploaded to the blob store.
func canMerge(events []*store.Event, authed bool) (bool, int, string) {
	pending := 0
	blocked := false
	for _, e := range events {
		if !e.UpdatedNotSubmitted {
			continue
		}
		pending++
		if e.HasAnyImage() && !e.ImagesUploaded {
			blocked = true
		}
	}

	switch {
	case !authed:
		return false, pending, "login required"
	case pending == 0:
		return false, pending, "no events need to be submitted"
	case blocked:
		return false, pending, "some pending events have images not yet uploaded"
	}
	return true, pending, ""
}
