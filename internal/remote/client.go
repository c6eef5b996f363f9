// Package remote implements the merge/sync protocol against the event
// server.
//
// Two independent operations exist: a one-directional merge push that
// retries while the server reports its store as locked (HTTP 423), and a
// pull sync that reconciles local and remote event sets by id membership
// only.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/eventdeck/eventdeck/internal/store"
)

// ErrNotAuthenticated is returned when an operation is attempted without
// a bearer token.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrorKind classifies an operation failure.
type ErrorKind string

const (
	// KindMergeRejected is a non-2xx, non-423 merge response.
	KindMergeRejected ErrorKind = "merge_rejected"

	// KindMergeStillLocked means every attempt saw HTTP 423.
	KindMergeStillLocked ErrorKind = "merge_still_locked"

	// KindMergeTransport is a merge request that got no response at all.
	KindMergeTransport ErrorKind = "merge_transport"

	// KindSyncRejected is a non-2xx sync response.
	KindSyncRejected ErrorKind = "sync_rejected"

	// KindSyncTransport is a sync request that got no response at all.
	KindSyncTransport ErrorKind = "sync_transport"
)

// MergeResult describes the outcome of a merge push.
type MergeResult struct {
	Success bool

	// Total is the server-reported event count after a successful merge.
	Total int

	// Attempts is how many requests were made, including the final one.
	Attempts int

	// Kind, Status and Message describe the failure when Success is
	// false.
	Kind    ErrorKind
	Status  int
	Message string
}

// SyncResult describes the outcome of a pull sync.
type SyncResult struct {
	Success bool

	// Added and Removed count membership changes; Events is the
	// reconciled collection that was persisted.
	Added   int
	Removed int
	Events  []*store.Event

	Kind    ErrorKind
	Status  int
	Message string
}

// Config holds protocol client settings.
type Config struct {
	// BaseURL of the event server, without trailing slash.
	BaseURL string

	// HTTPClient used for requests. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// RetryInterval is the wait between attempts while the server
	// reports 423.
	RetryInterval time.Duration

	// MaxAttempts bounds the total number of merge requests made while
	// locked.
	MaxAttempts int

	// Logger for protocol activity. Nil means a stderr default.
	Logger *log.Logger
}

// DefaultConfig returns the standard lock-retry policy: up to six
// attempts ten seconds apart.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		RetryInterval: 10 * time.Second,
		MaxAttempts:   6,
	}
}

// Client reconciles the local event store with the remote server.
type Client struct {
	store *store.Store
	cfg   *Config
}

// New creates a protocol client over the given store.
func New(st *store.Store, cfg *Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 6
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[remote] ", log.LstdFlags)
	}
	return &Client{store: st, cfg: cfg}
}

type mergeRequest struct {
	Events []*store.Event `json:"events"`
}

type mergeResponse struct {
	Total int `json:"total"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Merge pushes the entire local event collection to the server.
//
// While the server answers 423 the push is re-attempted on a fixed
// interval, up to the configured maximum; exhausting the attempts yields
// a KindMergeStillLocked result so the caller can decide to re-trigger
// later. Transport failures are reported immediately without consuming
// the retry budget. Clearing the "updated, not submitted" flags after a
// successful merge is the caller's responsibility.
func (c *Client) Merge(ctx context.Context, token string) (*MergeResult, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	body, err := json.Marshal(mergeRequest{Events: c.eventsForWire()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events: %w", err)
	}

	res := &MergeResult{}
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		res.Attempts = attempt
		c.cfg.Logger.Printf("Merge attempt %d/%d (%d events)", attempt, c.cfg.MaxAttempts, c.store.Len())

		status, respBody, err := c.post(ctx, token, bytes.NewReader(body))
		if err != nil {
			res.Kind = KindMergeTransport
			res.Message = err.Error()
			c.cfg.Logger.Printf("Merge transport failure: %v", err)
			return res, nil
		}

		switch {
		case status == http.StatusLocked:
			if attempt == c.cfg.MaxAttempts {
				res.Kind = KindMergeStillLocked
				res.Status = status
				res.Message = "server still locked after retries"
				c.cfg.Logger.Printf("Merge gave up: server still locked after %d attempts", attempt)
				return res, nil
			}
			c.cfg.Logger.Printf("Server locked, retrying in %s", c.cfg.RetryInterval)
			if err := sleep(ctx, c.cfg.RetryInterval); err != nil {
				res.Kind = KindMergeTransport
				res.Message = err.Error()
				return res, nil
			}

		case status >= 200 && status < 300:
			var mr mergeResponse
			if err := json.Unmarshal(respBody, &mr); err != nil {
				return nil, fmt.Errorf("failed to parse merge response: %w", err)
			}
			res.Success = true
			res.Total = mr.Total
			c.cfg.Logger.Printf("Merge succeeded: server holds %d events", mr.Total)
			return res, nil

		default:
			var er errorResponse
			_ = json.Unmarshal(respBody, &er)
			res.Kind = KindMergeRejected
			res.Status = status
			res.Message = er.Message
			c.cfg.Logger.Printf("Merge rejected: status=%d message=%q", status, er.Message)
			return res, nil
		}
	}

	// Unreachable: the loop always returns.
	return res, nil
}

// Sync pulls the remote event list and reconciles membership.
//
// Local events absent remotely are dropped; remote events absent locally
// are adopted verbatim; events present in both keep the local copy. The
// reconciled set is persisted as a single atomic write. Any failure
// aborts without touching the local store.
func (c *Client) Sync(ctx context.Context, token string) (*SyncResult, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	res := &SyncResult{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/events", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		res.Kind = KindSyncTransport
		res.Message = err.Error()
		c.cfg.Logger.Printf("Sync transport failure: %v", err)
		return res, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Kind = KindSyncTransport
		res.Message = err.Error()
		return res, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er errorResponse
		_ = json.Unmarshal(respBody, &er)
		res.Kind = KindSyncRejected
		res.Status = resp.StatusCode
		res.Message = er.Message
		c.cfg.Logger.Printf("Sync rejected: status=%d message=%q", resp.StatusCode, er.Message)
		return res, nil
	}

	var serverEvents []*store.Event
	if err := json.Unmarshal(respBody, &serverEvents); err != nil {
		return nil, fmt.Errorf("failed to parse server event list: %w", err)
	}

	merged, added, removed := reconcile(c.store.Events(), serverEvents)
	c.store.Replace(merged)
	if err := c.store.Save(); err != nil {
		return nil, fmt.Errorf("failed to persist reconciled events: %w", err)
	}

	res.Success = true
	res.Added = added
	res.Removed = removed
	res.Events = merged
	c.cfg.Logger.Printf("Sync complete: %d added, %d removed, %d total", added, removed, len(merged))
	return res, nil
}

// reconcile keeps local events still present remotely and adopts
// remote-only events. Field content of shared events is never pulled;
// only membership is reconciled.
func reconcile(local, server []*store.Event) (merged []*store.Event, added, removed int) {
	serverIDs := make(map[string]bool, len(server))
	for _, e := range server {
		serverIDs[e.ID] = true
	}
	localIDs := make(map[string]bool, len(local))
	for _, e := range local {
		localIDs[e.ID] = true
	}

	merged = make([]*store.Event, 0, len(server))
	for _, e := range local {
		if serverIDs[e.ID] {
			merged = append(merged, e)
		} else {
			removed++
		}
	}
	for _, e := range server {
		if !localIDs[e.ID] {
			merged = append(merged, e)
			added++
		}
	}
	return merged, added, removed
}

func (c *Client) eventsForWire() []*store.Event {
	events := c.store.Events()
	if events == nil {
		return []*store.Event{}
	}
	return events
}

func (c *Client) post(ctx context.Context, token string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/events/merge", body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build merge request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// sleep waits for the interval or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
