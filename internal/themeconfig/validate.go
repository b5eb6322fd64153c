package themeconfig

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/wonny/themeradar/internal/s0_docs"
)

var (
	themeIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	symbolPattern  = regexp.MustCompile(`^[A-Z]{1,5}$`)
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Metrics ===
	if cfg.Metrics.GrowthCap <= 1 {
		return ValidationError{"metrics.growth_cap", "must be > 1"}
	}
	if cfg.Metrics.ConcentrationTopN < 1 {
		return ValidationError{"metrics.concentration_top_n", "must be >= 1"}
	}
	if cfg.Metrics.ConfirmationDivisor <= 0 {
		return ValidationError{"metrics.confirmation_divisor", "must be > 0"}
	}
	if cfg.Metrics.KeyTickerLimit < 0 || cfg.Metrics.EvidenceLimit < 0 {
		return ValidationError{"metrics", "limits must be >= 0"}
	}

	// === Scoring ===
	if err := cfg.Scoring.Weights.Validate(); err != nil {
		return ValidationError{"scoring.weights", err.Error()}
	}

	// === Validation ===
	v := cfg.Validation
	if v.Alpha <= 0 || v.Alpha >= 1 {
		return ValidationError{"validation.alpha", "must be in (0, 1)"}
	}
	if v.NullHitRate <= 0 || v.NullHitRate >= 1 {
		return ValidationError{"validation.null_hit_rate", "must be in (0, 1)"}
	}
	if v.MinSampleSize < 1 {
		return ValidationError{"validation.min_sample_size", "must be >= 1"}
	}
	if err := v.WalkForward.Validate(); err != nil {
		return ValidationError{"validation.walk_forward", err.Error()}
	}
	if v.Governance.MaxUnresolvedRate < 0 || v.Governance.MaxUnresolvedRate > 1 {
		return ValidationError{"validation.governance.max_unresolved_rate", "must be in [0, 1]"}
	}

	// === Themes ===
	if len(cfg.Themes) == 0 {
		return ValidationError{"themes", "at least one theme required"}
	}
	seen := make(map[string]struct{}, len(cfg.Themes))
	for i, t := range cfg.Themes {
		field := fmt.Sprintf("themes[%d]", i)
		if !themeIDPattern.MatchString(t.ThemeID) {
			return ValidationError{field + ".theme_id", "must match ^[a-z0-9_]+$"}
		}
		if _, dup := seen[t.ThemeID]; dup {
			return ValidationError{field + ".theme_id", "duplicate " + t.ThemeID}
		}
		seen[t.ThemeID] = struct{}{}

		if strings.TrimSpace(t.DisplayName) == "" {
			return ValidationError{field + ".display_name", "required"}
		}
		if len(t.Keywords) == 0 && len(t.SeedTickers) == 0 {
			return ValidationError{field, "needs keywords or seed_tickers"}
		}
		for _, kw := range t.Keywords {
			if strings.TrimSpace(kw) == "" {
				return ValidationError{field + ".keywords", "empty keyword"}
			}
		}
		for _, s := range t.SeedTickers {
			if !symbolPattern.MatchString(strings.TrimPrefix(s, "$")) {
				return ValidationError{field + ".seed_tickers", "invalid symbol " + s}
			}
		}
		if t.ProxyETF != "" && !symbolPattern.MatchString(t.ProxyETF) {
			return ValidationError{field + ".proxy_etf", "invalid symbol " + t.ProxyETF}
		}
	}

	return nil
}

// CheckWarnings returns recommendations that do not stop the program
func CheckWarnings(cfg *Config) []Warning {
	var warnings []Warning

	w := cfg.Scoring.Weights
	if sum := w.Velocity + w.Sentiment + w.Confirmation + w.Price; math.Abs(sum-1) > 1e-9 {
		warnings = append(warnings, Warning{
			Code:    "WEIGHTS_NOT_NORMALIZED",
			Message: fmt.Sprintf("scoring weights sum to %.4f (scores are divided by the sum)", sum),
		})
	}

	for _, t := range cfg.Themes {
		if t.ProxyETF == "" {
			warnings = append(warnings, Warning{
				Code:    "NO_PROXY_ETF",
				Message: t.ThemeID + " has no proxy_etf; its predictions will never resolve",
			})
		}
		for _, s := range t.SeedTickers {
			sym := strings.TrimPrefix(s, "$")
			if !s0_docs.IsValidTicker(sym) {
				warnings = append(warnings, Warning{
					Code:    "SEED_TICKER_UNEXTRACTABLE",
					Message: fmt.Sprintf("%s seed %s is filtered by the ticker rule and only matches via keywords", t.ThemeID, sym),
				})
			}
		}
	}
	return warnings
}
