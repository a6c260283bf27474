package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	keys := 0
	if h.keys != nil {
		keys = h.keys.Len()
	}
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC(),
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Keys:    keys,
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	role := ""
	if h.repl != nil {
		role = h.repl.Role().String()
	}
	if !h.ready() {
		h.writeError(w, r, http.StatusServiceUnavailable, "RK-REPL-5030", "replication handshake not complete")
		return
	}
	h.writeJSON(w, r, http.StatusOK, ReadyResponse{Status: "ready", Role: role})
}

// handleReplication handles GET /replication.
func (h *Handler) handleReplication(w http.ResponseWriter, r *http.Request) {
	if h.repl == nil {
		h.writeError(w, r, http.StatusNotFound, "RK-REPL-4040", "replication state not configured")
		return
	}
	info := h.repl.Info()
	resp := ReplicationResponse{
		Role:       info.Role.String(),
		ReplOffset: info.ReplOffset,
		Primary:    h.repl.PrimaryAddr(),
	}
	// A replica has no ID of its own to advertise until it syncs.
	if resp.Primary == "" {
		resp.ReplID = info.ReplID
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}
