package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileName is the canonical store file name inside the data directory.
const FileName = "events.json"

// Store holds the in-memory event collection backed by a JSON file.
//
// The store is not safe for concurrent use. The tool runs a single
// operator's commands serially, so callers sequence access themselves.
type Store struct {
	path   string
	events []*Event
	logger *log.Logger
}

// Open creates a Store backed by the given file and loads it.
//
// A missing file is not an error; the store starts empty and the file is
// created on first save. If logger is nil, a default logger writing to
// stderr is used.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	s := &Store{path: path, logger: logger}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load re-reads the event collection from disk, replacing the in-memory
// set. A missing file yields an empty collection.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Printf("%s not found, starting empty", filepath.Base(s.path))
			s.events = nil
			return nil
		}
		return fmt.Errorf("failed to read event file %s: %w", s.path, err)
	}

	var events []*Event
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("failed to parse event file %s: %w", s.path, err)
	}
	for _, e := range events {
		e.normalize()
	}

	s.events = events
	s.logger.Printf("Loaded %d events", len(events))
	return nil
}

// Save writes the whole collection to disk as pretty-printed JSON.
//
// The write goes to a temporary file in the same directory followed by a
// rename, so a crash mid-write cannot leave a truncated store behind.
func (s *Store) Save() error {
	events := s.events
	if events == nil {
		events = []*Event{}
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".events-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace event file: %w", err)
	}

	s.logger.Printf("Saved %d events", len(events))
	return nil
}

// Events returns the live event slice. Callers may mutate individual
// event fields but must not reorder or reslice; structural changes go
// through Add, Delete, and Replace.
func (s *Store) Events() []*Event {
	return s.events
}

// IDs returns the ids of all events in collection order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.events))
	for _, e := range s.events {
		ids = append(ids, e.ID)
	}
	return ids
}

// Get returns the event with the given id, or nil if absent.
func (s *Store) Get(id string) *Event {
	for _, e := range s.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Add appends a new event. The id must not already exist.
func (s *Store) Add(e *Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("cannot add invalid event: %w", err)
	}
	if s.Get(e.ID) != nil {
		return fmt.Errorf("event %s already exists", e.ID)
	}
	s.events = append(s.events, e)
	return nil
}

// Update replaces the stored event with the same id.
func (s *Store) Update(e *Event) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("cannot update invalid event: %w", err)
	}
	for i, existing := range s.events {
		if existing.ID == e.ID {
			s.events[i] = e
			return nil
		}
	}
	return fmt.Errorf("event %s not found", e.ID)
}

// Delete removes the event with the given id.
func (s *Store) Delete(id string) error {
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("event %s not found", id)
}

// Replace swaps in a new collection wholesale. Used by the pull sync to
// install the reconciled set.
func (s *Store) Replace(events []*Event) {
	s.events = events
}

// Len returns the number of events.
func (s *Store) Len() int {
	return len(s.events)
}
