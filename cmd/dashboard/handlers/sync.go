package handlers

import (
	"net/http"
	"strings"

	"github.com/plantboard/backend/internal/connectivity"
	"github.com/plantboard/backend/internal/queue"
	syncer "github.com/plantboard/backend/internal/sync"
)

// SyncHandler exposes sync status, the pending-indicator lookup and the
// manual sync trigger.
type SyncHandler struct {
	coordinator *syncer.Coordinator
	monitor     *connectivity.Monitor
	queue       *queue.DurableQueue
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(c *syncer.Coordinator, m *connectivity.Monitor, q *queue.DurableQueue) *SyncHandler {
	return &SyncHandler{coordinator: c, monitor: m, queue: q}
}

// GetStatus handles GET /api/sync/status. Indicator data only; never blocks
// on network I/O.
func (h *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if !methodGuard(w, r, http.MethodGet) {
		return
	}

	response := map[string]interface{}{
		"status":         string(h.coordinator.Status()),
		"pending":        h.coordinator.Pending(),
		"online":         h.monitor.Online(),
		"backend_health": string(h.monitor.Health()),
		"degraded":       h.queue.Degraded(),
	}
	if lastSync := h.coordinator.LastSync(); lastSync != nil {
		response["last_sync"] = lastSync.Unix()
	}
	if lastErr := h.coordinator.LastError(); lastErr != nil {
		response["last_error"] = lastErr.Error()
	}

	writeJSON(w, http.StatusOK, response)
}

// GetPending handles GET /api/sync/pending?entityId=... and reports whether
// any queued mutation references the entity.
func (h *SyncHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	if !methodGuard(w, r, http.MethodGet) {
		return
	}

	entityID := strings.TrimSpace(r.URL.Query().Get("entityId"))
	if entityID == "" {
		http.Error(w, "entityId is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entity_id": entityID,
		"pending":   h.queue.Contains(entityID),
	})
}

// TriggerSync handles POST /api/sync/now. It kicks the coordinator and
// returns immediately; clients observe the outcome via the status stream.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if !methodGuard(w, r, http.MethodPost) {
		return
	}

	h.coordinator.Kick()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "accepted",
		"pending": h.coordinator.Pending(),
	})
}

// SetConnectivity handles POST /api/connectivity, the feed for platform
// reachability events.
func (h *SyncHandler) SetConnectivity(w http.ResponseWriter, r *http.Request) {
	if !methodGuard(w, r, http.MethodPost) {
		return
	}

	var request struct {
		Online *bool `json:"online"`
	}
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}
	if request.Online == nil {
		http.Error(w, "online is required", http.StatusBadRequest)
		return
	}

	h.monitor.SetOnline(*request.Online)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"online": h.monitor.Online(),
	})
}
