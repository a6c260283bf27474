package httpserver

import (
	"net/http"

	"github.com/yndnr/replikv/internal/server/httpserver/handler"
	"github.com/yndnr/replikv/internal/telemetry/logger"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves the JSON endpoints.
	Handler handler.Config

	// Metrics serves /metrics. Nil disables the endpoint.
	Metrics http.Handler

	// Logger for request logging.
	Logger logger.Logger
}

// NewRouter creates the router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	if cfg.Handler.Logger == nil {
		cfg.Handler.Logger = log
	}

	h := handler.New(cfg.Handler)

	mux := http.NewServeMux()
	mux.Handle("GET /health", h)
	mux.Handle("GET /ready", h)
	mux.Handle("GET /replication", h)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Order: Recover -> RequestID -> AccessLog -> mux
	return Chain(mux, Recover(log), RequestID(), AccessLog(log))
}
