package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kartoza/heart-risk/internal/config"
	"github.com/kartoza/heart-risk/internal/prediction"
)

// MaxBodyBytes caps the size of a prediction request body
const MaxBodyBytes = 1 << 20

const (
	msgInvalidInput     = "Invalid or missing input values"
	msgPredictionFailed = "Prediction failed"
	msgInternal         = "Internal server error"
)

// Handler provides HTTP API endpoints
type Handler struct {
	service *prediction.Service
	cfg     config.Config
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(service *prediction.Service, cfg config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleRoot).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")
	r.HandleFunc("/predict", h.handlePredict).Methods("POST")
}

// respondJSON sends a JSON response
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("encoding response", zap.Error(err))
	}
}

// respondError sends a JSON error response
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// handleRoot answers the bare liveness probe the web client uses
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "hello world")
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server and model information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version": h.cfg.Version,
		"model":   h.service.Info(),
	}
	h.respondJSON(w, http.StatusOK, info)
}

// handlePredict classifies one clinical observation
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	observation, err := decodeObservation(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.logger.Debug("rejecting request body",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		h.respondError(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	result, err := h.service.Predict(observation)
	switch {
	case err == nil:
		h.respondJSON(w, http.StatusOK, result)
	case errors.Is(err, prediction.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, msgInvalidInput)
	default:
		h.logger.Error("prediction failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, msgPredictionFailed)
	}
}

// decodeObservation reads exactly one JSON object. Numbers are kept as
// json.Number so their literal text reaches the feature extractor. The bare
// literals NaN, Infinity and -Infinity are accepted as Python clients emit them.
func decodeObservation(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(quoteNonFinite(data)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}

	observation, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("request body is not a JSON object")
	}
	return observation, nil
}

var nonFiniteLiterals = [][]byte{[]byte("NaN"), []byte("Infinity"), []byte("-Infinity")}

// quoteNonFinite wraps bare NaN/Infinity tokens outside strings in quotes,
// turning them into strings the feature extractor parses. Anything else is
// copied unchanged, so invalid JSON stays invalid.
func quoteNonFinite(data []byte) []byte {
	var out []byte
	inString, escaped := false, false
	last := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		for _, lit := range nonFiniteLiterals {
			if bytes.HasPrefix(data[i:], lit) {
				out = append(out, data[last:i]...)
				out = append(out, '"')
				out = append(out, lit...)
				out = append(out, '"')
				i += len(lit) - 1
				last = i + 1
				break
			}
		}
	}
	if out == nil {
		return data
	}
	return append(out, data[last:]...)
}
