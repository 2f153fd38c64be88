package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hermes/internal/agents"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

const maxPromptChars = 4000

// pipelineTimeout bounds one full run across several local model calls
const pipelineTimeout = 5 * time.Minute

// ProposeHandler exposes the proposal pipeline over HTTP
type ProposeHandler struct {
	pipeline *agents.Pipeline
	log      *logger.Logger
}

// NewProposeHandler creates the pipeline endpoint handler
func NewProposeHandler(pipeline *agents.Pipeline, log *logger.Logger) *ProposeHandler {
	return &ProposeHandler{
		pipeline: pipeline,
		log:      log,
	}
}

// ProposeRequest is the request body of POST /api/propose
type ProposeRequest struct {
	Prompt string `json:"prompt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles POST /api/propose
func (h *ProposeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		h.observe(r, http.StatusMethodNotAllowed)
		return
	}

	var req ProposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		h.observe(r, http.StatusBadRequest)
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt must not be empty")
		h.observe(r, http.StatusBadRequest)
		return
	}
	if len(prompt) > maxPromptChars {
		writeError(w, http.StatusBadRequest,
			"prompt exceeds "+strconv.Itoa(maxPromptChars)+" characters")
		h.observe(r, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pipelineTimeout)
	defer cancel()

	result, err := h.pipeline.Run(ctx, prompt)
	if err != nil {
		status := statusForPipelineError(err)
		h.log.Errorw("pipeline run failed",
			"error", err, "status", status, "elapsed", time.Since(start))
		writeError(w, status, err.Error())
		h.observe(r, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
	h.observe(r, http.StatusOK)
}

func (h *ProposeHandler) observe(r *http.Request, status int) {
	metrics.HTTPRequests.WithLabelValues("/api/propose", r.Method, strconv.Itoa(status)).Inc()
}

func statusForPipelineError(err error) int {
	switch {
	case errors.Is(err, errors.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, errors.ErrNoRecommendations):
		return http.StatusBadGateway
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}
