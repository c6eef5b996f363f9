package store

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupStore creates a store backed by a file in a temp directory.
func setupStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "events.json")
	s, err := Open(path, log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

func testEvent(id, title string) *Event {
	return &Event{
		ID:        id,
		Title:     title,
		EventDate: "2025-06-01",
		Tags:      []string{"music", "outdoor"},
	}
}

func TestOpenMissingFile(t *testing.T) {
	s := setupStore(t)
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d events", s.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := setupStore(t)

	e := testEvent("20250601-AB12-001", "Summer Fair")
	e.Description = "short"
	e.LongDescription = "long text"
	e.GroupID = "grp-1"
	e.FullImageURL = "./images/full/x.png"
	e.UpdatedNotSubmitted = true

	if err := s.Add(e); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add(testEvent("20250601-AB12-002", "Night Market")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := Open(s.Path(), nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.Len() != 2 {
		t.Fatalf("expected 2 events after reload, got %d", reopened.Len())
	}

	got := reopened.Get("20250601-AB12-001")
	if got == nil {
		t.Fatal("event missing after reload")
	}
	if got.Title != e.Title || got.Description != e.Description ||
		got.LongDescription != e.LongDescription || got.GroupID != e.GroupID ||
		got.FullImageURL != e.FullImageURL ||
		got.UpdatedNotSubmitted != e.UpdatedNotSubmitted {
		t.Errorf("round trip changed fields: got %+v want %+v", got, e)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "music" {
		t.Errorf("tags not preserved: %v", got.Tags)
	}
}

func TestSaveIsPrettyPrinted(t *testing.T) {
	s := setupStore(t)
	if err := s.Add(testEvent("20250601-AB12-001", "Fair")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("failed to read store file: %v", err)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("store file is not indented")
	}
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		t.Error("store file is not a JSON array")
	}
}

func TestAddDuplicateID(t *testing.T) {
	s := setupStore(t)
	if err := s.Add(testEvent("20250601-AB12-001", "Fair")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add(testEvent("20250601-AB12-001", "Other")); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	s := setupStore(t)
	if err := s.Add(testEvent("20250601-AB12-001", "Fair")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	updated := testEvent("20250601-AB12-001", "Renamed")
	if err := s.Update(updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if s.Get("20250601-AB12-001").Title != "Renamed" {
		t.Error("update not applied")
	}

	if err := s.Update(testEvent("missing", "x")); err == nil {
		t.Error("expected update of missing event to fail")
	}

	if err := s.Delete("20250601-AB12-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store after delete, got %d", s.Len())
	}
	if err := s.Delete("20250601-AB12-001"); err == nil {
		t.Error("expected delete of missing event to fail")
	}
}

func TestLegacyThumbURLMigration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.json")

	legacy := `[{"id":"20240101-XXXX-001","title":"Old","thumb_url":"./images/thumb/a.png"}]`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatalf("failed to write legacy file: %v", err)
	}

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("failed to open legacy store: %v", err)
	}

	e := s.Get("20240101-XXXX-001")
	if e == nil {
		t.Fatal("legacy event missing")
	}
	if e.ThumbImageURL != "./images/thumb/a.png" {
		t.Errorf("thumb_url not migrated, got %q", e.ThumbImageURL)
	}
	if e.LegacyThumbURL != "" {
		t.Errorf("legacy field should be cleared, got %q", e.LegacyThumbURL)
	}
}

func TestEventHelpers(t *testing.T) {
	e := &Event{ID: "x"}
	if e.HasAnyImage() || e.HasLocalImages() {
		t.Error("empty event should have no images")
	}

	e.SmallImageURL = "https://cdn.example.com/x-small.png"
	if !e.HasAnyImage() {
		t.Error("HasAnyImage should see remote url")
	}
	if e.HasLocalImages() {
		t.Error("remote url is not a local path")
	}

	e.ThumbImageURL = "./images/thumb/x.png"
	if !e.HasLocalImages() {
		t.Error("HasLocalImages should see local marker")
	}

	if p := e.ImageURL(VariantThumb); p == nil || *p != e.ThumbImageURL {
		t.Error("ImageURL(thumb) should point at thumb field")
	}
	if e.ImageURL("bogus") != nil {
		t.Error("unknown variant should return nil")
	}
}
