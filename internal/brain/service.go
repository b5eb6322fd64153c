package brain

import (
	"context"

	"github.com/wonny/themeradar/internal/contracts"
)

// Service binds an Orchestrator to a fixed RunConfig so callers
// (CLI, HTTP, scheduler) trigger runs without knowing the wiring
type Service struct {
	orch *Orchestrator
	cfg  RunConfig
}

// NewService creates a service
func NewService(orch *Orchestrator, cfg RunConfig) *Service {
	return &Service{orch: orch, cfg: cfg}
}

// RunPipeline executes one full run with a fresh run ID
func (s *Service) RunPipeline(ctx context.Context) (*contracts.RunSummary, error) {
	cfg := s.cfg
	cfg.RunID = ""
	return s.orch.Run(ctx, cfg)
}

// EvaluatePending resolves due predictions under the pipeline lock
func (s *Service) EvaluatePending(ctx context.Context) (contracts.EvaluationSummary, error) {
	return s.orch.Evaluate(ctx, s.cfg.LockKey, s.cfg.LockTTL, s.cfg.Location)
}
