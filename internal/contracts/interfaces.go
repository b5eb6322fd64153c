package contracts

import (
	"context"
	"time"
)

// DocumentSource retrieves raw posts for a set of subreddits (S0)
// ⭐ SSOT: S0 문서 소스 인터페이스
// Retry/backoff belong to the implementation; Fetch returns success or failure.
type DocumentSource interface {
	Fetch(ctx context.Context, subreddits []string) (*FetchResult, error)
}

// SentimentScorer maps text to a compound score in [-1, 1]. Must be pure and deterministic.
type SentimentScorer interface {
	Score(text string) float64
}

// PriceLookup resolves historical closing prices
// ⭐ SSOT: 가격 조회 인터페이스
type PriceLookup interface {
	// CloseOnOrAfter returns the first close on or after date, searching at most maxDays calendar days forward
	CloseOnOrAfter(ctx context.Context, symbol string, date time.Time, maxDays int) (PriceQuote, error)
	// CloseOnOrBefore returns the last close on or before date, searching at most maxDays calendar days back
	CloseOnOrBefore(ctx context.Context, symbol string, date time.Time, maxDays int) (PriceQuote, error)
}

// TradingCalendar converts business-day offsets into calendar dates
type TradingCalendar interface {
	AddTradingDays(date time.Time, n int) time.Time
	IsTradingDay(date time.Time) bool
}

// PredictionStore is the ledger persistence boundary (S4/S5)
// ⭐ SSOT: 예측 원장 저장소 인터페이스
type PredictionStore interface {
	// InsertIfAbsent writes rows keyed by (signal_date, theme_id); existing keys are left untouched.
	// Returns the number of rows actually inserted.
	InsertIfAbsent(ctx context.Context, rows []SignalPrediction) (int, error)
	// UpdateEvaluation applies the one-time evaluation to a still-pending row
	UpdateEvaluation(ctx context.Context, id int64, eval PredictionEvaluation) error
	// List returns rows matching the filter ordered by signal_date, rank
	List(ctx context.Context, filter PredictionFilter) ([]SignalPrediction, error)
}

// RunLock is the distributed single-run guard
type RunLock interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// ArtifactStore persists rendered run reports
type ArtifactStore interface {
	Save(ctx context.Context, report *Report, text string) (string, error)
	Latest(ctx context.Context) (*Report, error)
}

// StageListener receives pipeline progress events
type StageListener interface {
	Publish(event StageEvent)
}
