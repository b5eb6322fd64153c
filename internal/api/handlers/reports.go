package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/themeradar/internal/artifacts"
	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/validation"
	"github.com/wonny/themeradar/pkg/logger"
)

// ReportSource reads rendered run reports
type ReportSource interface {
	Latest(ctx context.Context) (*contracts.Report, error)
	LatestText(ctx context.Context) (string, error)
}

// ReportHandler serves run reports, ledger rows and the evaluation report
type ReportHandler struct {
	reports    ReportSource
	store      contracts.PredictionStore
	validation validation.Config
	logger     *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportSource, store contracts.PredictionStore, cfg validation.Config, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reports:    reports,
		store:      store,
		validation: cfg,
		logger:     log,
	}
}

// GetLatestReport returns the newest run report
// GET /api/reports/latest[?format=text]
func (h *ReportHandler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("format") == "text" {
		text, err := h.reports.LatestText(ctx)
		if err != nil {
			h.reportError(w, err)
			return
		}
		respondText(w, http.StatusOK, text)
		return
	}

	report, err := h.reports.Latest(ctx)
	if err != nil {
		h.reportError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) reportError(w http.ResponseWriter, err error) {
	if errors.Is(err, artifacts.ErrNoReport) {
		respondError(w, http.StatusNotFound, "no report available")
		return
	}
	h.logger.WithError(err).Error("Failed to load latest report")
	respondError(w, http.StatusInternalServerError, "Failed to load latest report")
}

// ListPredictions returns ledger rows
// GET /api/predictions?timing=&confidence=&from=&to=&evaluated=true|false&limit=
func (h *ReportHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list predictions")
		respondError(w, http.StatusInternalServerError, "Failed to list predictions")
		return
	}
	if rows == nil {
		rows = []contracts.SignalPrediction{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(rows),
		"predictions": rows,
	})
}

// GetEvaluation builds the robustness report over the whole ledger
// GET /api/evaluation[?format=text]
func (h *ReportHandler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.List(r.Context(), contracts.PredictionFilter{})
	if err != nil {
		h.logger.WithError(err).Error("Failed to list predictions")
		respondError(w, http.StatusInternalServerError, "Failed to list predictions")
		return
	}

	report, err := validation.BuildEvaluationReport(rows, h.validation)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build evaluation report")
		respondError(w, http.StatusInternalServerError, "Failed to build evaluation report")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		respondText(w, http.StatusOK, validation.RenderText(report))
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func parseFilter(r *http.Request) (contracts.PredictionFilter, error) {
	q := r.URL.Query()
	f := contracts.PredictionFilter{
		Timing:     q.Get("timing"),
		Confidence: q.Get("confidence"),
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(contracts.DateLayout, v)
		if err != nil {
			return f, errors.New("from must be YYYY-MM-DD")
		}
		f.TargetFrom = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(contracts.DateLayout, v)
		if err != nil {
			return f, errors.New("to must be YYYY-MM-DD")
		}
		f.TargetTo = &t
	}
	if v := q.Get("evaluated"); v != "" {
		evaluated, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("evaluated must be true or false")
		}
		f.EvaluatedOnly = evaluated
		f.PendingOnly = !evaluated
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	return f, nil
}
