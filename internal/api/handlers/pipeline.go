package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
)

// PipelineRunner triggers runs and evaluation passes
type PipelineRunner interface {
	RunPipeline(ctx context.Context) (*contracts.RunSummary, error)
	EvaluatePending(ctx context.Context) (contracts.EvaluationSummary, error)
}

// PipelineHandler handles pipeline trigger endpoints
// ⭐ SSOT: 파이프라인 API 핸들러는 여기서만
type PipelineHandler struct {
	runner PipelineRunner
	logger *logger.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(runner PipelineRunner, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner: runner,
		logger: log,
	}
}

// RunPipeline executes one pipeline run synchronously
// POST /api/pipeline/run
func (h *PipelineHandler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.RunPipeline(r.Context())
	if err != nil {
		status, code := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Pipeline run failed")
		} else {
			h.logger.WithError(err).Warn("Pipeline run rejected")
		}
		respondJSON(w, status, map[string]interface{}{
			"error":   code,
			"message": err.Error(),
			"run":     summary,
		})
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Evaluate resolves due predictions
// POST /api/predictions/evaluate
func (h *PipelineHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runner.EvaluatePending(r.Context())
	if err != nil {
		status, code := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Evaluation failed")
		}
		respondError(w, status, code)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
