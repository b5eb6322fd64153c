package themeconfig

import (
	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/s1_metrics"
	"github.com/wonny/themeradar/internal/s2_scoring"
	"github.com/wonny/themeradar/internal/validation"
)

// Config는 테마 정의와 지표/점수/검증 튜닝 값의 전체 설정
type Config struct {
	Meta       Meta                        `yaml:"meta" json:"meta"`
	Metrics    Metrics                     `yaml:"metrics" json:"metrics"`
	Scoring    Scoring                     `yaml:"scoring" json:"scoring"`
	Validation validation.Config           `yaml:"validation" json:"validation"`
	Themes     []contracts.ThemeDefinition `yaml:"themes" json:"themes"`
}

// Meta 메타 정보
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// Metrics S1 tunables. Windows come from the environment (pkg/config).
type Metrics struct {
	GrowthCap           float64 `yaml:"growth_cap" json:"growth_cap"`
	ConcentrationTopN   int     `yaml:"concentration_top_n" json:"concentration_top_n"`
	ConfirmationDivisor float64 `yaml:"confirmation_divisor" json:"confirmation_divisor"`
	KeyTickerLimit      int     `yaml:"key_ticker_limit" json:"key_ticker_limit"`
	EvidenceLimit       int     `yaml:"evidence_limit" json:"evidence_limit"`
}

// Scoring S2 가중치
type Scoring struct {
	Weights s2_scoring.Weights `yaml:"weights" json:"weights"`
}

// Default returns a config with every tunable at its production default and no themes
func Default() Config {
	opts := s1_metrics.DefaultOptions()
	return Config{
		Meta: Meta{ConfigID: "themeradar", Version: "1"},
		Metrics: Metrics{
			GrowthCap:           opts.GrowthCap,
			ConcentrationTopN:   opts.ConcentrationTopN,
			ConfirmationDivisor: opts.ConfirmationDivisor,
			KeyTickerLimit:      opts.KeyTickerLimit,
			EvidenceLimit:       opts.EvidenceLimit,
		},
		Scoring:    Scoring{Weights: s2_scoring.DefaultWeights()},
		Validation: validation.DefaultConfig(),
	}
}

// MetricsOptions combines the YAML tunables with the run windows
func (c *Config) MetricsOptions(lookbackDays, baselineDays int, includeComments bool) s1_metrics.Options {
	return s1_metrics.Options{
		LookbackDays:        lookbackDays,
		BaselineDays:        baselineDays,
		IncludeComments:     includeComments,
		GrowthCap:           c.Metrics.GrowthCap,
		ConcentrationTopN:   c.Metrics.ConcentrationTopN,
		ConfirmationDivisor: c.Metrics.ConfirmationDivisor,
		KeyTickerLimit:      c.Metrics.KeyTickerLimit,
		EvidenceLimit:       c.Metrics.EvidenceLimit,
	}
}

// Theme returns the definition for themeID
func (c *Config) Theme(themeID string) (contracts.ThemeDefinition, bool) {
	for _, t := range c.Themes {
		if t.ThemeID == themeID {
			return t, true
		}
	}
	return contracts.ThemeDefinition{}, false
}
