package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/api/handlers"
	"github.com/wonny/themeradar/internal/artifacts"
	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/ledger"
	"github.com/wonny/themeradar/internal/validation"
	"github.com/wonny/themeradar/pkg/logger"
)

type stubRunner struct{}

func (stubRunner) RunPipeline(context.Context) (*contracts.RunSummary, error) {
	return nil, contracts.ErrLockConflict
}

func (stubRunner) EvaluatePending(context.Context) (contracts.EvaluationSummary, error) {
	return contracts.EvaluationSummary{}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.Nop()
	reports := handlers.NewReportHandler(
		artifacts.NewFileStore(t.TempDir(), nil, log),
		ledger.NewMemoryStore(),
		validation.DefaultConfig(),
		log,
	)
	return NewRouter(handlers.NewPipelineHandler(stubRunner{}, log), reports, handlers.NewHub(log), log)
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "themeradar", body["service"])
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodPost, "/api/pipeline/run", http.StatusConflict},
		{http.MethodGet, "/api/pipeline/run", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/predictions/evaluate", http.StatusOK},
		{http.MethodGet, "/api/predictions", http.StatusOK},
		{http.MethodGet, "/api/evaluation", http.StatusOK},
		{http.MethodGet, "/api/reports/latest", http.StatusNotFound},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
