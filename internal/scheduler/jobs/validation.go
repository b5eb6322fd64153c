package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/validation"
	"github.com/wonny/themeradar/pkg/logger"
)

// ValidationJob rebuilds the evaluation report over the whole ledger
type ValidationJob struct {
	store    contracts.PredictionStore
	cfg      validation.Config
	schedule string
	logger   *logger.Logger

	mu   sync.RWMutex
	last *validation.EvaluationReport
}

// NewValidationJob creates a new validation job
func NewValidationJob(store contracts.PredictionStore, cfg validation.Config, schedule string, log *logger.Logger) *ValidationJob {
	return &ValidationJob{
		store:    store,
		cfg:      cfg,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ValidationJob) Name() string {
	return "ledger_validation"
}

// Schedule returns the cron schedule
func (j *ValidationJob) Schedule() string {
	return j.schedule
}

// Run builds the report and logs the governance verdict
func (j *ValidationJob) Run(ctx context.Context) error {
	rows, err := j.store.List(ctx, contracts.PredictionFilter{})
	if err != nil {
		return fmt.Errorf("list predictions: %w", err)
	}

	report, err := validation.BuildEvaluationReport(rows, j.cfg)
	if err != nil {
		return fmt.Errorf("build evaluation report: %w", err)
	}

	j.mu.Lock()
	j.last = report
	j.mu.Unlock()

	log := j.logger.WithFields(map[string]interface{}{
		"governance":      report.GovernanceStatus,
		"resolved":        report.Resolved,
		"pending":         report.Pending,
		"unresolved_rate": report.UnresolvedRate,
		"hit_rate":        report.FullSample.HitRate.Rate,
		"oos_slices":      report.WalkForward.SliceCount,
	})
	if report.GovernanceStatus == validation.StatusPass {
		log.Info("Ledger validation passed")
	} else {
		log.WithField("reasons", report.GovernanceReasons).Warn("Ledger validation did not pass")
	}
	return nil
}

// LastReport returns the report from the most recent run, or nil
func (j *ValidationJob) LastReport() *validation.EvaluationReport {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}
