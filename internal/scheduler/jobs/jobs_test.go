package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/ledger"
	"github.com/wonny/themeradar/internal/validation"
	"github.com/wonny/themeradar/pkg/logger"
)

type stubRunner struct {
	err   error
	calls int
}

func (s *stubRunner) RunPipeline(context.Context) (*contracts.RunSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &contracts.RunSummary{RunID: "r1", RankedThemes: 5, StoredPredictions: 5}, nil
}

func TestPipelineJob(t *testing.T) {
	runner := &stubRunner{}
	job := NewPipelineJob(runner, "0 30 17 * * 1-5", logger.Nop())

	assert.Equal(t, "radar_pipeline", job.Name())
	assert.Equal(t, "0 30 17 * * 1-5", job.Schedule())
	require.NoError(t, job.Run(context.Background()))

	runner.err = contracts.ErrLockConflict
	assert.NoError(t, job.Run(context.Background()), "lock conflict is a skip")

	runner.err = errors.New("reddit down")
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reddit down")
	assert.Equal(t, 3, runner.calls)
}

func TestValidationJob(t *testing.T) {
	store := ledger.NewMemoryStore()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := store.InsertIfAbsent(context.Background(), []contracts.SignalPrediction{
		{SignalDate: day, TargetDate: day.AddDate(0, 0, 11), ThemeID: "defense", Rank: 1},
	})
	require.NoError(t, err)

	job := NewValidationJob(store, validation.DefaultConfig(), "0 0 9 * * 6", logger.Nop())
	assert.Nil(t, job.LastReport())

	require.NoError(t, job.Run(context.Background()))
	report := job.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, 1, report.TotalPredictions)
	assert.Equal(t, 1, report.Pending)
	assert.Equal(t, validation.StatusFail, report.GovernanceStatus)
}

func TestValidationJob_BadConfig(t *testing.T) {
	cfg := validation.DefaultConfig()
	cfg.WalkForward.TestSize = 0
	job := NewValidationJob(ledger.NewMemoryStore(), cfg, "@weekly", logger.Nop())
	assert.Error(t, job.Run(context.Background()))
}
