package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/microtrace/microtrace/internal/httperr"
	"github.com/microtrace/microtrace/internal/logging"
	"github.com/microtrace/microtrace/internal/worker"
)

// Handler implements the service endpoints.
type Handler struct {
	worker *worker.Service
}

type analyzeRequest struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

type analyzeResponse struct {
	Sum        float64 `json:"sum"`
	Difference float64 `json:"difference"`
}

// Analyze handles POST /analyze: validates the two numeric inputs and
// delegates to the worker. The only defined success status is 200; invalid
// bodies are rejected with a declared 400 before the worker runs.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx).Named("microtrace.api")

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, r, httperr.BadRequest("request body must be a JSON object"))
		return
	}
	if req.A == nil || req.B == nil {
		h.reject(w, r, httperr.BadRequest("fields 'a' and 'b' are required"))
		return
	}
	a, b := *req.A, *req.B
	if !isFinite(a) || !isFinite(b) {
		h.reject(w, r, httperr.BadRequest("fields 'a' and 'b' must be finite numbers"))
		return
	}

	log.Info("analyze_request",
		zap.Float64("input_a", a),
		zap.Float64("input_b", b),
	)

	result, err := h.worker.Analyze(ctx, a, b)
	if err != nil {
		// Only cancellation can fail the worker: the client went away
		// mid-delay and there is nobody left to answer.
		log.Debug("analyze_abandoned", zap.Error(err))
		return
	}

	log.Info("analyze_response",
		zap.Float64("sum", result.Sum),
		zap.Float64("difference", result.Difference),
	)

	writeJSON(w, http.StatusOK, analyzeResponse{
		Sum:        result.Sum,
		Difference: result.Difference,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// reject answers a declared error and records it for the metrics middleware.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, e *httperr.Error) {
	httperr.Store(r.Context(), e)
	writeJSON(w, e.Status, map[string]string{"error": e.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
