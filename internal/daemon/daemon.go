// Package daemon provides the watch mode that keeps event images pushed
// to the blob store.
//
// The daemon:
//  1. Watches the data directory for store and image changes
//  2. Debounces rapid edits into a single sync pass
//  3. Re-runs the blob sync so new local images migrate promptly
//  4. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eventdeck/eventdeck/internal/blob"
	"github.com/eventdeck/eventdeck/internal/store"
)

// Notifier receives activity callbacks from the daemon. The dashboard
// handler implements it; a nil Notifier disables notifications.
type Notifier interface {
	OnStoreSaved(events int)
	OnUploadComplete(succeeded, failed, events int)
}

// Config holds daemon settings.
type Config struct {
	// DebounceInterval is how long a change must sit quiet before a
	// sync pass runs. Batches rapid edits together.
	DebounceInterval time.Duration

	// ResyncInterval triggers a periodic sync pass even without file
	// events, catching anything the watcher missed.
	ResyncInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 500 * time.Millisecond,
		ResyncInterval:   5 * time.Minute,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates file watching and blob synchronization.
type Daemon struct {
	store    *store.Store
	syncer   *blob.Syncer
	dataDir  string
	config   *Config
	notifier Notifier

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time
	changeQueueMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Daemon over the given store and syncer. dataDir is the
// directory holding the store file and the images tree.
func New(st *store.Store, syncer *blob.Syncer, dataDir string, config *Config, notifier Notifier) (*Daemon, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if syncer == nil {
		return nil, fmt.Errorf("syncer cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[daemon] ", log.LstdFlags)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		store:       st,
		syncer:      syncer,
		dataDir:     dataDir,
		config:      config,
		notifier:    notifier,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start runs the daemon: an initial sync pass, then watching for
// changes. Blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting watch daemon")

	d.runSync()

	for _, dir := range d.watchDirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create watch directory %s: %w", dir, err)
		}
		if err := d.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	d.config.Logger.Printf("Watching %s", d.dataDir)

	d.wg.Add(3)
	go d.watchFileEvents()
	go d.processChangeQueue()
	go d.periodicResync()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.cancel()
	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}
	d.wg.Wait()
	d.config.Logger.Println("Watch daemon stopped")
	return nil
}

func (d *Daemon) watchDirs() []string {
	return []string{
		d.dataDir,
		filepath.Join(d.dataDir, "images", store.VariantFull),
		filepath.Join(d.dataDir, "images", store.VariantSmall),
		filepath.Join(d.dataDir, "images", store.VariantThumb),
	}
}

// watchFileEvents monitors filesystem events and queues changes.
func (d *Daemon) watchFileEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !watchableFile(event.Name) {
				continue
			}
			d.config.Logger.Printf("File event: %s %s", event.Op, event.Name)
			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// watchableFile reports whether a path is worth reacting to: the store
// file or an image variant.
func watchableFile(path string) bool {
	base := filepath.Base(path)
	if base == "" || base[0] == '.' {
		return false // temp files from atomic writes
	}
	switch filepath.Ext(path) {
	case ".json", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// queueChange adds a file to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()
	d.changeQueue[path] = time.Now()
}

// processChangeQueue runs a sync pass once queued changes settle.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			if d.drainSettledChanges() {
				d.runSync()
			}
		}
	}
}

// drainSettledChanges removes entries older than the debounce interval
// and reports whether any were drained.
func (d *Daemon) drainSettledChanges() bool {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	now := time.Now()
	drained := false
	for path, queuedAt := range d.changeQueue {
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}
		delete(d.changeQueue, path)
		drained = true
	}
	return drained
}

// periodicResync runs a sync pass on a fixed interval as a safety net.
func (d *Daemon) periodicResync() {
	defer d.wg.Done()

	if d.config.ResyncInterval <= 0 {
		return
	}
	ticker := time.NewTicker(d.config.ResyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.runSync()
		}
	}
}

// runSync reloads the store (the file may have been edited externally)
// and pushes any local images to the blob store.
func (d *Daemon) runSync() {
	if err := d.store.Load(); err != nil {
		d.config.Logger.Printf("Error reloading store: %v", err)
		return
	}

	res := d.syncer.SyncAll(d.ctx)
	if res.TotalProcessed == 0 {
		return
	}

	if d.notifier != nil {
		d.notifier.OnUploadComplete(res.Succeeded, res.Failed, res.TotalProcessed)
		if res.Succeeded > 0 {
			d.notifier.OnStoreSaved(d.store.Len())
		}
	}
}
