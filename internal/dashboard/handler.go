package dashboard

import (
	"encoding/json"
	"log"
	"time"
)

// Handler formats daemon activity as dashboard messages. It is the
// bridge the watch daemon notifies; a nil *Handler is safe to call, so
// callers need no branching when no dashboard is running.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates a handler connected to a dashboard server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// OnStoreSaved broadcasts a persisted-collection message.
func (h *Handler) OnStoreSaved(events int) {
	if h == nil {
		return
	}
	h.send(MessageTypeStoreSaved, StoreSavedData{Events: events})
}

// OnUploadComplete broadcasts a finished blob sync run.
func (h *Handler) OnUploadComplete(succeeded, failed, events int) {
	if h == nil {
		return
	}
	h.send(MessageTypeUploadComplete, UploadCompleteData{
		Succeeded: succeeded,
		Failed:    failed,
		Events:    events,
	})
}

// OnSyncComplete broadcasts a finished server sync.
func (h *Handler) OnSyncComplete(added, removed, total int) {
	if h == nil {
		return
	}
	h.send(MessageTypeSyncComplete, SyncCompleteData{
		Added:   added,
		Removed: removed,
		Total:   total,
	})
}

func (h *Handler) send(typ MessageType, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	h.server.Broadcast(Message{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      payload,
	})
}
