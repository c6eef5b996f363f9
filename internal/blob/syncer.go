package blob

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/eventdeck/eventdeck/internal/store"
)

// ErrorLogName is the append-only log of upload failures kept next to
// the store for post-mortem inspection.
const ErrorLogName = "image-sync-errors.log"

// Result summarizes a SyncAll run. Succeeded and Failed count individual
// variant uploads; TotalProcessed counts events that were examined (not
// skipped via the uploaded flag).
type Result struct {
	Succeeded      int
	Failed         int
	TotalProcessed int

	// Failures holds one human-readable reason per failed upload,
	// missing file, or persistence error.
	Failures []string
}

// Config holds syncer settings.
type Config struct {
	// DataDir resolves local-path markers (./images/...) to files on
	// disk.
	DataDir string

	// KeyPrefix is prepended to every object key
	// ({prefix}{eventID}-{variant}{ext}).
	KeyPrefix string

	// Logger for sync activity. Nil means a stderr default.
	Logger *log.Logger

	// ErrorLog receives one line per failure. Nil means a rotating log
	// file (ErrorLogName) inside DataDir.
	ErrorLog io.Writer
}

// Syncer walks the event store and migrates local image files to the
// object store, rewriting event URLs in place.
type Syncer struct {
	store    *store.Store
	uploader Uploader
	cfg      Config
	errlog   *log.Logger
}

// NewSyncer creates a Syncer over the given store and uploader.
func NewSyncer(st *store.Store, uploader Uploader, cfg Config) *Syncer {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[blob] ", log.LstdFlags)
	}
	if cfg.ErrorLog == nil {
		cfg.ErrorLog = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.DataDir, ErrorLogName),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
	}
	return &Syncer{
		store:    st,
		uploader: uploader,
		cfg:      cfg,
		errlog:   log.New(cfg.ErrorLog, "", log.LstdFlags),
	}
}

// SyncAll uploads every local-path image variant across the store.
//
// Events already marked as uploaded are skipped, making re-runs
// idempotent. Failures are recorded and logged but never abort the
// batch; a successful upload rewrites that field's URL immediately, so a
// partial failure leaves the succeeded fields migrated. An event is
// flagged as uploaded when at least one of its variants made it to the
// store. The collection is persisted once at the end if anything
// succeeded.
func (s *Syncer) SyncAll(ctx context.Context) Result {
	var res Result
	anySucceeded := false

	for _, evt := range s.store.Events() {
		if evt.ImagesUploaded {
			continue
		}
		if !evt.HasLocalImages() {
			continue
		}
		res.TotalProcessed++

		eventSucceeded := false
		for _, variant := range []string{store.VariantFull, store.VariantSmall, store.VariantThumb} {
			field := evt.ImageURL(variant)
			if !store.IsLocalPath(*field) {
				continue
			}

			url, err := s.uploadVariant(ctx, evt.ID, variant, *field)
			if err != nil {
				s.recordFailure(&res, err.Error())
				continue
			}

			*field = url
			res.Succeeded++
			eventSucceeded = true
			s.cfg.Logger.Printf("Uploaded %s image for %s: %s", variant, evt.ID, url)
		}

		if eventSucceeded {
			evt.ImagesUploaded = true
			anySucceeded = true
		}
	}

	if anySucceeded {
		if err := s.store.Save(); err != nil {
			s.recordFailure(&res, fmt.Sprintf("failed to persist event store: %v", err))
		}
	}

	s.cfg.Logger.Printf("Image sync complete: uploaded=%d failed=%d events=%d",
		res.Succeeded, res.Failed, res.TotalProcessed)
	return res
}

// uploadVariant checks the local file and uploads it under the
// deterministic key {prefix}{eventID}-{variant}{ext}.
func (s *Syncer) uploadVariant(ctx context.Context, eventID, variant, localURL string) (string, error) {
	rel := strings.TrimPrefix(localURL, "./")
	path := filepath.Join(s.cfg.DataDir, filepath.FromSlash(rel))

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file does not exist: %s", localURL)
		}
		return "", fmt.Errorf("cannot access %s: %w", localURL, err)
	}

	key := fmt.Sprintf("%s%s-%s%s", s.cfg.KeyPrefix, eventID, variant, filepath.Ext(path))

	url, err := s.uploader.Upload(ctx, path, key)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s image for %s: %w", variant, eventID, err)
	}
	return url, nil
}

func (s *Syncer) recordFailure(res *Result, reason string) {
	res.Failed++
	res.Failures = append(res.Failures, reason)
	s.cfg.Logger.Printf("WARNING: %s", reason)
	s.errlog.Println(reason)
}
