package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/plantboard/backend/internal/dispatch"
	"github.com/plantboard/backend/internal/state"
)

// ActionHandler exposes the mutation dispatch surface and the state read.
type ActionHandler struct {
	dispatcher *dispatch.Dispatcher
	store      *state.Store
	source     string
}

// NewActionHandler creates an ActionHandler. source records where the
// initial dataset came from, surfaced on the health endpoint.
func NewActionHandler(d *dispatch.Dispatcher, s *state.Store, source string) *ActionHandler {
	return &ActionHandler{dispatcher: d, store: s, source: source}
}

// PostAction handles POST /api/actions. The body names the action and its
// payload; every state-changing user action enters here. hide-message and
// set-theme are local-only and never create queue records.
func (h *ActionHandler) PostAction(w http.ResponseWriter, r *http.Request) {
	if !methodGuard(w, r, http.MethodPost) {
		return
	}

	var request struct {
		Action  string          `json:"action"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	switch request.Action {
	case "hide-message":
		var body struct {
			ID string `json:"id"`
		}
		if len(request.Payload) > 0 {
			json.Unmarshal(request.Payload, &body)
		}
		if err := h.dispatcher.HideMessage(body.ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "queued": false})
		return

	case "set-theme":
		var body struct {
			Theme string `json:"theme"`
		}
		if len(request.Payload) > 0 {
			json.Unmarshal(request.Payload, &body)
		}
		if err := h.dispatcher.SetTheme(body.Theme); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "queued": false})
		return
	}

	entityID, err := h.dispatcher.Dispatch(dispatch.Action(request.Action), request.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"queued":    true,
		"entity_id": entityID,
	})
}

// GetState handles GET /api/state and returns the optimistic local dataset
// plus the local-only extras.
func (h *ActionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	if !methodGuard(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":            h.store.Snapshot(),
		"theme":           h.store.Theme(),
		"hidden_messages": h.store.HiddenMessages(),
	})
}

// Health handles GET /api/health.
func (h *ActionHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !methodGuard(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "plantboard-backend",
		"bootstrap": h.source,
	})
}
