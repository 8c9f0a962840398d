package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"dsa-interview-service/internal/app"
	"dsa-interview-service/internal/domain"
)

// RESTHandler serves the stateless query surface against the Session
// Registry: snapshot, export, forced end, removal, and stats.
type RESTHandler struct {
	service *app.InterviewService
}

func NewRESTHandler(service *app.InterviewService) *RESTHandler {
	return &RESTHandler{service: service}
}

// Register mounts the REST routes on the router.
func (h *RESTHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/session/{id}/state", h.getState).Methods(http.MethodGet)
	r.HandleFunc("/api/session/{id}/export", h.exportSession).Methods(http.MethodGet)
	r.HandleFunc("/api/session/{id}/end", h.endSession).Methods(http.MethodPost)
	r.HandleFunc("/api/session/{id}", h.removeSession).Methods(http.MethodDelete)
	r.HandleFunc("/api/sessions/stats", h.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/cleanup", h.cleanupSessions).Methods(http.MethodPost)
}

func (h *RESTHandler) getState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *RESTHandler) exportSession(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Export(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func (h *RESTHandler) endSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	summary, err := h.service.EndSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app.SummaryPayload{SessionID: id, Summary: summary.Text, Report: summary})
}

func (h *RESTHandler) removeSession(w http.ResponseWriter, r *http.Request) {
	h.service.Remove(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) cleanupSessions(w http.ResponseWriter, r *http.Request) {
	removed := h.service.CleanupExpired(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *RESTHandler) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions": h.service.ActiveSessions(),
		"timestamp":       time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrSessionNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": errorMessage(err)})
}
