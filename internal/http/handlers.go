package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/breatheaware/aqi-service/internal/client"
	"github.com/breatheaware/aqi-service/internal/engine"
	"github.com/breatheaware/aqi-service/internal/models"
	"github.com/breatheaware/aqi-service/internal/validation"
)

// LiveAQIProvider is the slice of the fusion service the handlers need.
type LiveAQIProvider interface {
	GetLiveAQI(ctx context.Context) (models.LivePrediction, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine           *engine.Engine
	live             LiveAQIProvider
	logger           *zap.Logger
	apiKeyConfigured bool
	startTime        time.Time
	shuttingDown     atomic.Bool
}

// NewHandler returns a new Handler.
func NewHandler(inferenceEngine *engine.Engine, live LiveAQIProvider, logger *zap.Logger, apiKeyConfigured bool) *Handler {
	return &Handler{
		engine:           inferenceEngine,
		live:             live,
		logger:           logger,
		apiKeyConfigured: apiKeyConfigured,
		startTime:        time.Now(),
	}
}

// SetShuttingDown flips the graceful-shutdown flag consulted by GetHealth.
func (h *Handler) SetShuttingDown(v bool) {
	h.shuttingDown.Store(v)
}

// GetHome handles GET /. Informational listing of the API surface.
func (h *Handler) GetHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "BreatheAware API is running! 🌍",
		"endpoints": map[string]string{
			"/predict":  "POST - Predict AQI from pollutant values",
			"/live-aqi": "GET - Get live AQI for the configured location",
		},
	})
}

// PostPredict handles POST /predict. Body: JSON object with pm25, pm10,
// no2, so2, co, o3 as numbers or numeric strings.
func (h *Handler) PostPredict(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", "request body must be a JSON object")
		return
	}

	prediction, err := h.engine.Classify(r.Context(), payload)
	if err != nil {
		h.writeClassifyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

// GetLiveAQI handles GET /live-aqi.
func (h *Handler) GetLiveAQI(w http.ResponseWriter, r *http.Request) {
	result, err := h.live.GetLiveAQI(r.Context())
	if err != nil {
		h.writeLiveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decodePayload decodes the request body into a generic map with UseNumber,
// preserving numeric precision until coercion.
func decodePayload(r *http.Request) (map[string]interface{}, error) {
	var payload map[string]interface{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("empty payload")
	}
	return payload, nil
}

// writeClassifyError maps engine errors onto the response taxonomy:
// validation → 400 naming the field, model unavailable → 503, anything
// else → generic 500 without internals in the body.
func (h *Handler) writeClassifyError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, "INVALID_INPUT", verr.Error())
	case errors.Is(err, engine.ErrModelUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "ML models not loaded properly")
	default:
		h.logUnexpected(r, "classification failed", err)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Prediction failed")
	}
}

// writeLiveError distinguishes fetch failures from parse failures where
// feasible, per the upstream error taxonomy.
func (h *Handler) writeLiveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrModelUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "ML models not loaded properly")
	case errors.Is(err, client.ErrUpstreamParse):
		writeError(w, r, http.StatusBadGateway, "UPSTREAM_PARSE", "Failed to parse live data")
	case errors.Is(err, client.ErrMissingAPIKey):
		writeError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Air-pollution API key missing")
	case errors.Is(err, client.ErrUpstreamFailure),
		errors.Is(err, client.ErrInvalidAPIKey),
		errors.Is(err, client.ErrRateLimited):
		writeError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Failed to fetch live data")
	default:
		h.logUnexpected(r, "live AQI failed", err)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "Live AQI fetch failed")
	}
}

func (h *Handler) logUnexpected(r *http.Request, msg string, err error) {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
		logger.Error(msg, zap.Error(err))
	} else if h.logger != nil {
		h.logger.Error(msg, zap.Error(err))
	}
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	checks := make(map[string]string)

	if h.engine != nil && h.engine.Ready() {
		checks["model"] = "loaded"
	} else {
		checks["model"] = "unavailable"
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}
	if h.apiKeyConfigured {
		checks["airPollutionApi"] = "configured"
	} else {
		checks["airPollutionApi"] = "missing_api_key"
	}
	if h.shuttingDown.Load() {
		status = "shutting-down"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "aqi-service",
		"version":   "dev",
		"checks":    checks,
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
