package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
)

// PipelineRunner executes one full radar run
type PipelineRunner interface {
	RunPipeline(ctx context.Context) (*contracts.RunSummary, error)
}

// PipelineJob runs the daily radar after the market close
type PipelineJob struct {
	runner   PipelineRunner
	schedule string
	logger   *logger.Logger
}

// NewPipelineJob creates a new pipeline job
func NewPipelineJob(runner PipelineRunner, schedule string, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		runner:   runner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "radar_pipeline"
}

// Schedule returns the cron schedule
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline; a run already holding the lock is not a failure
func (j *PipelineJob) Run(ctx context.Context) error {
	summary, err := j.runner.RunPipeline(ctx)
	if errors.Is(err, contracts.ErrLockConflict) {
		j.logger.Warn("Pipeline already running, skipping scheduled run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("scheduled pipeline run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":      summary.RunID,
		"signal_date": summary.SignalDate,
		"ranked":      summary.RankedThemes,
		"stored":      summary.StoredPredictions,
		"evaluated":   summary.Evaluation.Evaluated,
	}).Info("Scheduled pipeline run completed")
	return nil
}
