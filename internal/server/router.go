package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cortexa-systems/cortexa-ingest/internal/handlers"
	"github.com/cortexa-systems/cortexa-ingest/internal/middleware"
)

// NewRouter constructs a ServeMux with the ingest API routes
// registered.
func NewRouter(h *handlers.IngestHandler) http.Handler {
	mux := http.NewServeMux()

	// Telemetry upload
	mux.HandleFunc("/api/v1/eeg", h.HandleUpload)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
