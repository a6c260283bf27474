package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/replikv/internal/core/domain"
	"github.com/yndnr/replikv/internal/telemetry/logger"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// KeyCounter reports the number of stored keys.
type KeyCounter interface {
	Len() int
}

// ReadinessFunc reports whether the node can serve traffic. A replica is
// ready once its handshake with the primary completed.
type ReadinessFunc func() bool

// Config wires a Handler to the rest of the server.
type Config struct {
	Repl    *domain.ReplicationState
	Keys    KeyCounter
	Ready   ReadinessFunc
	Version string
	Logger  logger.Logger
}

// Handler serves the admin endpoints.
type Handler struct {
	repl    *domain.ReplicationState
	keys    KeyCounter
	ready   ReadinessFunc
	version string
	started time.Time
	logger  logger.Logger
	mux     *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	ready := cfg.Ready
	if ready == nil {
		ready = func() bool { return true }
	}

	h := &Handler{
		repl:    cfg.Repl,
		keys:    cfg.Keys,
		ready:   ready,
		version: cfg.Version,
		started: time.Now(),
		logger:  log,
		mux:     http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /replication", h.handleReplication)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(RequestIDHeader, requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, nil)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set(RequestIDHeader, requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// getRequestID returns the request ID set by the RequestID middleware.
func getRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}
