package validation

import "fmt"

// Governance verdicts
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// GovernanceConfig holds the floors and ceilings of the pass/fail verdict
type GovernanceConfig struct {
	MinResolved       int     `yaml:"min_resolved" json:"min_resolved"`
	MaxUnresolvedRate float64 `yaml:"max_unresolved_rate" json:"max_unresolved_rate"`
	MinSlices         int     `yaml:"min_slices" json:"min_slices"`
}

// DefaultGovernanceConfig returns 30 resolved / 20% unresolved / 3 slices
func DefaultGovernanceConfig() GovernanceConfig {
	return GovernanceConfig{MinResolved: 30, MaxUnresolvedRate: 0.20, MinSlices: 3}
}

// GovernanceResult is the verdict with every failing reason enumerated
type GovernanceResult struct {
	Status  string   `json:"status"`
	Reasons []string `json:"reasons"`
}

// Passed reports a pass verdict
func (g GovernanceResult) Passed() bool {
	return g.Status == StatusPass
}

// Governance fails when resolved observations are too few, the unresolved rate is too
// high, or walk-forward slices are too few
func Governance(resolved int, unresolvedRate float64, slices int, cfg GovernanceConfig) GovernanceResult {
	reasons := []string{}
	if resolved < cfg.MinResolved {
		reasons = append(reasons, fmt.Sprintf("resolved observations %d below minimum %d", resolved, cfg.MinResolved))
	}
	if unresolvedRate > cfg.MaxUnresolvedRate {
		reasons = append(reasons, fmt.Sprintf("unresolved rate %.3f above maximum %.3f", unresolvedRate, cfg.MaxUnresolvedRate))
	}
	if slices < cfg.MinSlices {
		reasons = append(reasons, fmt.Sprintf("walk-forward slices %d below minimum %d", slices, cfg.MinSlices))
	}

	if len(reasons) > 0 {
		return GovernanceResult{Status: StatusFail, Reasons: reasons}
	}
	return GovernanceResult{Status: StatusPass, Reasons: reasons}
}
