package workflow

import (
	"testing"

	"github.com/eventdeck/eventdeck/internal/store"
)

func TestAllowedNoEvents(t *testing.T) {
	a := Allowed(nil, "", false)

	if !a.AddEvent {
		t.Error("adding should always be allowed")
	}
	if a.EditEvent || a.DeleteEvent || a.ProcessImages || a.UploadImages {
		t.Errorf("nothing else should be allowed with no events: %+v", a)
	}
	if a.Sync || a.Merge {
		t.Error("network operations require auth")
	}
}

func TestAllowedCurrentEvent(t *testing.T) {
	events := []*store.Event{
		{ID: "x"},
		{ID: "y", Title: "Fair", EventDate: "2025-06-01"},
	}

	bare := Allowed(events, "x", false)
	if !bare.EditEvent || !bare.DeleteEvent {
		t.Error("selected event should be editable and deletable")
	}
	if bare.ProcessImages {
		t.Error("image processing needs title and date")
	}

	filled := Allowed(events, "y", false)
	if !filled.ProcessImages {
		t.Error("filled-in event should allow image processing")
	}
}

func TestAllowedUploadImages(t *testing.T) {
	events := []*store.Event{
		{ID: "x", FullImageURL: "https://cdn.example.com/x.png"},
	}
	if Allowed(events, "", false).UploadImages {
		t.Error("remote-only images need no upload")
	}

	events[0].ThumbImageURL = "./images/thumb/x.png"
	if !Allowed(events, "", false).UploadImages {
		t.Error("local images should enable upload")
	}
}

func TestMergeGate(t *testing.T) {
	tests := []struct {
		name    string
		events  []*store.Event
		authed  bool
		want    bool
		pending int
	}{
		{
			name:   "not authenticated",
			events: []*store.Event{{ID: "a", UpdatedNotSubmitted: true}},
			authed: false, want: false, pending: 1,
		},
		{
			name:   "nothing pending",
			events: []*store.Event{{ID: "a"}},
			authed: true, want: false, pending: 0,
		},
		{
			name: "pending without images",
			events: []*store.Event{
				{ID: "a", UpdatedNotSubmitted: true},
			},
			authed: true, want: true, pending: 1,
		},
		{
			name: "pending with unuploaded images",
			events: []*store.Event{
				{ID: "a", UpdatedNotSubmitted: true, FullImageURL: "./images/full/a.png"},
			},
			authed: true, want: false, pending: 1,
		},
		{
			name: "pending with uploaded images",
			events: []*store.Event{
				{ID: "a", UpdatedNotSubmitted: true, FullImageURL: "https://cdn.example.com/a.png", ImagesUploaded: true},
			},
			authed: true, want: true, pending: 1,
		},
		{
			name: "one blocked event blocks the merge",
			events: []*store.Event{
				{ID: "a", UpdatedNotSubmitted: true},
				{ID: "b", UpdatedNotSubmitted: true, ThumbImageURL: "./images/thumb/b.png"},
			},
			authed: true, want: false, pending: 2,
		},
		{
			name: "unflagged events are ignored by the gate",
			events: []*store.Event{
				{ID: "a", UpdatedNotSubmitted: true},
				{ID: "b", ThumbImageURL: "./images/thumb/b.png"},
			},
			authed: true, want: true, pending: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Allowed(tt.events, "", tt.authed)
			if a.Merge != tt.want {
				t.Errorf("Merge = %v, want %v (reason %q)", a.Merge, tt.want, a.MergeBlockedReason)
			}
			if a.PendingMerge != tt.pending {
				t.Errorf("PendingMerge = %d, want %d", a.PendingMerge, tt.pending)
			}
			if !tt.want && a.MergeBlockedReason == "" {
				t.Error("blocked merge should carry a reason")
			}
		})
	}
}
