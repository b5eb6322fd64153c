package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/themeradar/internal/artifacts"
	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/ledger"
	"github.com/wonny/themeradar/internal/s0_docs"
	"github.com/wonny/themeradar/internal/s1_metrics"
	"github.com/wonny/themeradar/internal/s2_scoring"
	"github.com/wonny/themeradar/internal/s3_classify"
	"github.com/wonny/themeradar/pkg/logger"
)

const releaseTimeout = 5 * time.Second

// Orchestrator coordinates one theme radar run under the global lock
// ⭐ SSOT: 파이프라인 조율은 여기서만
// S0 → S1 → S2 → S3 → artifacts → S5 evaluate → S4 store
type Orchestrator struct {
	source    contracts.DocumentSource
	engine    *s1_metrics.Engine
	scorer    *s2_scoring.Scorer
	lifecycle *ledger.Lifecycle
	artifacts contracts.ArtifactStore
	lock      contracts.RunLock
	listener  contracts.StageListener

	logger *logger.Logger
	now    func() time.Time
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID             string // generated when empty
	Subreddits        []string
	Themes            []contracts.ThemeDefinition
	Metrics           s1_metrics.Options
	TopN              int
	MinRecentMentions int
	LockKey           string
	LockTTL           time.Duration
	Location          *time.Location // market timezone for the signal date
	ConfigHash        string
}

// NewOrchestrator creates a new orchestrator; listener may be nil
func NewOrchestrator(
	source contracts.DocumentSource,
	engine *s1_metrics.Engine,
	scorer *s2_scoring.Scorer,
	lifecycle *ledger.Lifecycle,
	store contracts.ArtifactStore,
	lock contracts.RunLock,
	listener contracts.StageListener,
	log *logger.Logger,
) *Orchestrator {
	if listener == nil {
		listener = nopListener{}
	}
	return &Orchestrator{
		source:    source,
		engine:    engine,
		scorer:    scorer,
		lifecycle: lifecycle,
		artifacts: store,
		lock:      lock,
		listener:  listener,
		logger:    log.Component("brain"),
		now:       time.Now,
	}
}

// Run executes the full pipeline. Lock conflicts return ErrLockConflict;
// no_docs / insufficient_evidence abort before any artifact or ledger write.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*contracts.RunSummary, error) {
	startTime := o.now()
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	log := o.logger.WithRun(cfg.RunID)
	signalDate := o.marketDay(cfg.Location)

	summary := &contracts.RunSummary{
		RunID:           cfg.RunID,
		SignalDate:      signalDate.Format(contracts.DateLayout),
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
	}

	release, err := o.acquire(ctx, cfg.LockKey, cfg.LockTTL)
	if err != nil {
		return summary, err
	}
	defer release()

	log.WithFields(map[string]interface{}{
		"signal_date": summary.SignalDate,
		"subreddits":  cfg.Subreddits,
		"themes":      len(cfg.Themes),
		"top_n":       cfg.TopN,
	}).Info("Starting pipeline run")

	// S0: documents
	o.started(cfg.RunID, contracts.StageDocuments)
	fetch, err := o.source.Fetch(ctx, cfg.Subreddits)
	if err != nil {
		return summary, o.failed(cfg.RunID, contracts.StageDocuments, fmt.Errorf("fetch documents: %w", err))
	}
	docs := s0_docs.BuildDocuments(fetch)
	summary.Docs = len(docs)
	o.completed(summary, contracts.StageDocuments, len(docs))

	// S1: metrics
	o.started(cfg.RunID, contracts.StageMetrics)
	metrics, err := o.engine.ComputeMetrics(ctx, docs, cfg.Themes, cfg.Metrics)
	if err != nil {
		return summary, o.failed(cfg.RunID, contracts.StageMetrics, err)
	}
	o.completed(summary, contracts.StageMetrics, len(metrics.Metrics))

	// S2: scoring
	o.started(cfg.RunID, contracts.StageScoring)
	scores := o.scorer.ScoreThemes(metrics.Metrics)
	o.completed(summary, contracts.StageScoring, len(scores))

	// S3: classify + select
	o.started(cfg.RunID, contracts.StageClassify)
	ranked, err := s3_classify.RankThemes(metrics, scores, cfg.Themes, s3_classify.RankOptions{
		TopN:              cfg.TopN,
		MinRecentMentions: cfg.MinRecentMentions,
	})
	if err != nil {
		return summary, o.failed(cfg.RunID, contracts.StageClassify, err)
	}
	summary.RankedThemes = len(ranked)
	o.completed(summary, contracts.StageClassify, len(ranked))

	// Report artifacts are written only after S1~S3 succeed
	report := &contracts.Report{
		RunID:        cfg.RunID,
		GeneratedAt:  o.now().UTC(),
		SignalDate:   summary.SignalDate,
		ConfigHash:   cfg.ConfigHash,
		Subreddits:   fetch.Subreddits,
		Docs:         metrics.Docs,
		LookbackDays: metrics.LookbackDays,
		BaselineDays: metrics.BaselineDays,
		WindowEndUTC: metrics.WindowEndUTC,
		Themes:       ranked,
	}
	o.started(cfg.RunID, contracts.StageReport)
	path, err := o.artifacts.Save(ctx, report, artifacts.RenderText(report))
	if err != nil {
		return summary, o.failed(cfg.RunID, contracts.StageReport, fmt.Errorf("save report: %w", err))
	}
	summary.ReportPath = path
	o.completed(summary, contracts.StageReport, len(ranked))

	// S5: resolve due predictions from earlier runs
	o.started(cfg.RunID, contracts.StageEvaluate)
	eval, err := o.lifecycle.EvaluatePendingPredictions(ctx, signalDate)
	if err != nil {
		return summary, o.failed(cfg.RunID, contracts.StageEvaluate, err)
	}
	summary.Evaluation = eval
	o.completed(summary, contracts.StageEvaluate, eval.Evaluated)

	// S4: record this run's predictions
	o.started(cfg.RunID, contracts.StageLedger)
	stored, err := o.lifecycle.StorePredictions(ctx, cfg.RunID, signalDate, ranked)
	if err != nil {
		return summary, o.failed(cfg.RunID, contracts.StageLedger, err)
	}
	summary.StoredPredictions = stored
	o.completed(summary, contracts.StageLedger, stored)

	summary.DurationMS = o.now().Sub(startTime).Milliseconds()
	log.WithFields(map[string]interface{}{
		"docs":      summary.Docs,
		"ranked":    summary.RankedThemes,
		"stored":    summary.StoredPredictions,
		"evaluated": eval.Evaluated,
		"eval_errs": eval.Errors,
		"duration":  summary.DurationMS,
		"report":    summary.ReportPath,
	}).Info("Pipeline run completed successfully")

	return summary, nil
}

// Evaluate runs only the evaluation phase, under the same lock as Run
func (o *Orchestrator) Evaluate(ctx context.Context, lockKey string, ttl time.Duration, loc *time.Location) (contracts.EvaluationSummary, error) {
	release, err := o.acquire(ctx, lockKey, ttl)
	if err != nil {
		return contracts.EvaluationSummary{}, err
	}
	defer release()

	return o.lifecycle.EvaluatePendingPredictions(ctx, o.marketDay(loc))
}

// acquire takes the global lock and returns its unconditional release
func (o *Orchestrator) acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := o.lock.Acquire(ctx, key, token, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire pipeline lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is held by another run", contracts.ErrLockConflict, key)
	}

	o.logger.WithFields(map[string]interface{}{"lock_key": key, "ttl": ttl.String()}).Debug("Acquired pipeline lock")

	return func() {
		// the run context may already be cancelled
		rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := o.lock.Release(rctx, key, token); err != nil {
			o.logger.WithError(err).WithField("lock_key", key).Error("Failed to release pipeline lock")
		}
	}, nil
}

// marketDay is today's calendar date in the market timezone, as UTC midnight
func (o *Orchestrator) marketDay(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := o.now().In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// Stage events
// =============================================================================

func (o *Orchestrator) started(runID string, stage contracts.Stage) {
	o.logger.WithRun(runID).WithStage(stage.ShortName()).Debug("Stage started")
	o.listener.Publish(contracts.StageEvent{RunID: runID, Stage: stage, Status: "started", Timestamp: o.now().UTC()})
}

func (o *Orchestrator) completed(summary *contracts.RunSummary, stage contracts.Stage, count int) {
	summary.CompletedStages = append(summary.CompletedStages, stage.String())
	o.logger.WithRun(summary.RunID).WithFields(map[string]interface{}{
		"stage": stage.ShortName(),
		"count": count,
	}).Info("Stage completed")
	o.listener.Publish(contracts.StageEvent{
		RunID: summary.RunID, Stage: stage, Status: "completed", Count: count, Timestamp: o.now().UTC(),
	})
}

func (o *Orchestrator) failed(runID string, stage contracts.Stage, err error) error {
	log := o.logger.WithRun(runID).WithStage(stage.ShortName()).WithError(err)
	if contracts.IsPrecondition(err) || errors.Is(err, context.Canceled) {
		log.Warn("Stage aborted")
	} else {
		log.Error("Stage failed")
	}
	o.listener.Publish(contracts.StageEvent{
		RunID: runID, Stage: stage, Status: "failed", Error: err.Error(), Timestamp: o.now().UTC(),
	})
	return fmt.Errorf("%s failed: %w", stage.ShortName(), err)
}

type nopListener struct{}

func (nopListener) Publish(contracts.StageEvent) {}
