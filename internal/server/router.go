package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hookrelay-systems/hookrelay/internal/handlers"
	"github.com/hookrelay-systems/hookrelay/internal/middleware"
)

// NewRouter constructs a ServeMux with relay API routes registered. The
// fixed routes claim GET only; any other method on those paths, and any
// path they do not claim, falls through to the capture handler. That keeps
// a provider POSTing to /count-webhooks a capture, not a 405.
func NewRouter(h *handlers.Handler) http.Handler {
	mux := http.NewServeMux()

	// Tenant and administrator API
	mux.HandleFunc("GET /count-webhooks", h.CountForTenant)
	mux.HandleFunc("GET /webhooks-per-host", h.CountsPerHost)
	mux.HandleFunc("GET /auth-metadata", h.AuthMetadata)
	mux.HandleFunc("GET /store-metadata", h.StoreMetadata)

	// Health endpoints
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("GET /readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Catch-all: webhook capture and store-wide delete
	mux.HandleFunc("/", h.Root)

	return middleware.RequestID(mux)
}
