package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cortexa-systems/cortexa-ingest/internal/compression"
	"github.com/cortexa-systems/cortexa-ingest/internal/httputil"
	"github.com/cortexa-systems/cortexa-ingest/internal/logging"
	"github.com/cortexa-systems/cortexa-ingest/internal/metrics"
	"github.com/cortexa-systems/cortexa-ingest/internal/models"
	"github.com/cortexa-systems/cortexa-ingest/internal/ratelimit"
	"github.com/cortexa-systems/cortexa-ingest/internal/service"
)

// IngestService is the pipeline behind the upload endpoint.
type IngestService interface {
	IngestBlock(ctx context.Context, u models.Upload) (models.IngestResult, error)
}

// DBPinger reports database reachability for the readiness probe.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// BrokerChecker reports broker connectivity for the readiness probe.
type BrokerChecker interface {
	IsConnected() bool
}

type IngestHandler struct {
	service         IngestService
	limiter         ratelimit.RateLimiter
	db              DBPinger
	broker          BrokerChecker
	maxPayloadBytes int
	logger          *logging.Logger
}

func NewIngestHandler(svc IngestService, limiter ratelimit.RateLimiter, db DBPinger, broker BrokerChecker, maxPayloadBytes int, logger *logging.Logger) *IngestHandler {
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	return &IngestHandler{
		service:         svc,
		limiter:         limiter,
		db:              db,
		broker:          broker,
		maxPayloadBytes: maxPayloadBytes,
		logger:          logger,
	}
}

// HandleUpload accepts one compressed telemetry block. Request
// validation failures return 400 without invoking any pipeline stage;
// decompression and persistence failures return a generic 500.
func (h *IngestHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	defer r.Body.Close()

	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg, ok := validate(&req); !ok {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.PayloadZstd)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "payload_zstd is not valid base64")
		return
	}
	if h.maxPayloadBytes > 0 && len(payload) > h.maxPayloadBytes {
		httputil.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("payload exceeds %d bytes", h.maxPayloadBytes))
		return
	}
	metrics.PayloadBytesTotal.Add(float64(len(payload)))

	allowed, err := h.limiter.Allow(r.Context(), req.DeviceID)
	if err != nil {
		// Limiter trouble must not block ingestion.
		h.logger.WarnContext(r.Context(), "rate limiter unavailable", logging.Error(err))
		allowed = true
	}
	if !allowed {
		httputil.WriteError(w, http.StatusTooManyRequests, "upload rate limit exceeded")
		return
	}

	result, err := h.service.IngestBlock(r.Context(), models.Upload{
		UserID:         req.UserID,
		DeviceID:       req.DeviceID,
		SessionID:      req.SessionID,
		SamplingRateHz: req.SamplingRateHz,
		Payload:        payload,
	})
	if err != nil {
		var decompErr *compression.DecompressionError
		var persistErr *service.PersistenceError
		switch {
		case errors.As(err, &decompErr):
			h.logger.ErrorContext(r.Context(), "payload decompression failed",
				logging.SessionID(req.SessionID), logging.Error(err))
		case errors.As(err, &persistErr):
			h.logger.ErrorContext(r.Context(), "sample persistence failed",
				logging.SessionID(req.SessionID), logging.Error(err))
		default:
			h.logger.ErrorContext(r.Context(), "ingestion failed",
				logging.SessionID(req.SessionID), logging.Error(err))
		}
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if result.InsertedSamples == 0 {
		httputil.WriteJSON(w, http.StatusOK, models.IngestResponse{
			Status:  "ok",
			Message: "payload contained no complete records",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.IngestResponse{
		Status:          "ok",
		InsertedRecords: result.InsertedSamples,
	})
}

// validate checks the required upload fields. Returns an error message
// and false when a field is missing or invalid.
func validate(req *models.IngestRequest) (string, bool) {
	switch {
	case req.UserID == "":
		return "missing required field: user_id", false
	case req.DeviceID == "":
		return "missing required field: device_id", false
	case req.SessionID == "":
		return "missing required field: session_id", false
	case req.SamplingRateHz <= 0:
		return "sampling_rate_hz must be a positive integer", false
	case req.PayloadZstd == "":
		return "missing required field: payload_zstd", false
	}
	return "", true
}

// Health is the liveness probe.
func (h *IngestHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports whether the service can accept uploads: the database
// must answer a ping and the broker connection must be up.
func (h *IngestHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"database": "ok",
		"broker":   "ok",
	}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			status["database"] = "unreachable"
			healthy = false
		}
	}
	if h.broker != nil && !h.broker.IsConnected() {
		status["broker"] = "disconnected"
		healthy = false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, status)
}
