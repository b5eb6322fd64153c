package contracts

import "time"

// DateLayout is the canonical calendar-date format used across the ledger
const DateLayout = "2006-01-02"

// SignalPrediction is one durable ledger row
// ⭐ SSOT: 예측 원장 행 구조체
// Logical key: (SignalDate, ThemeID). Created once (first writer wins), evaluated once.
type SignalPrediction struct {
	ID         int64     `json:"id"`
	RunID      string    `json:"run_id"`
	SignalDate time.Time `json:"signal_date"`
	TargetDate time.Time `json:"target_date"`
	ThemeID    string    `json:"theme_id"`
	ThemeName  string    `json:"theme_name"`
	Rank       int       `json:"rank"`
	Score      float64   `json:"score"`
	SignalType string    `json:"signal_type"`
	Confidence string    `json:"confidence"`
	Timing     string    `json:"timing"`
	Stars      int       `json:"stars"`
	ProxyETF   string    `json:"proxy_etf,omitempty"`
	EntryPrice *float64  `json:"entry_price"`

	// Evaluation fields (written exactly once)
	ExitPrice      *float64   `json:"exit_price"`
	ExitPriceDate  *time.Time `json:"exit_price_date"`
	ReturnPct      *float64   `json:"return_pct"`
	EvaluatedAt    *time.Time `json:"evaluated_at"`
	Hit            *int       `json:"hit"` // 1, 0 or nil (unresolved)
	EvaluationNote string     `json:"evaluation_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Key returns the logical uniqueness key
func (p *SignalPrediction) Key() string {
	return p.SignalDate.Format(DateLayout) + "|" + p.ThemeID
}

// IsEvaluated reports whether the evaluation phase has touched the row
func (p *SignalPrediction) IsEvaluated() bool {
	return p.EvaluatedAt != nil
}

// IsResolved reports whether the row has a hit/miss outcome
func (p *SignalPrediction) IsResolved() bool {
	return p.EvaluatedAt != nil && p.Hit != nil
}

// PredictionEvaluation is the point update applied to one row
type PredictionEvaluation struct {
	ExitPrice     *float64
	ExitPriceDate *time.Time
	ReturnPct     *float64
	Hit           *int
	Note          string
	EvaluatedAt   time.Time
}

// PredictionFilter selects ledger rows. Zero values mean "no constraint".
type PredictionFilter struct {
	TargetFrom    *time.Time
	TargetTo      *time.Time // inclusive
	PendingOnly   bool       // evaluated_at IS NULL
	EvaluatedOnly bool       // evaluated_at IS NOT NULL
	Timing        string
	Confidence    string
	Limit         int
}

// EvaluationSummary is the result of one evaluation pass
type EvaluationSummary struct {
	Evaluated  int `json:"evaluated"`
	Hits       int `json:"hits"`
	Unresolved int `json:"unresolved"`
	Deferred   int `json:"deferred"` // no close yet, search window still open
	Errors     int `json:"errors"`
}

// PriceQuote is the result of a historical close lookup.
// Price and PriceDate are nil when no close exists within the search bound.
type PriceQuote struct {
	Symbol    string     `json:"symbol"`
	Price     *float64   `json:"price"`
	PriceDate *time.Time `json:"price_date"`
	Note      string     `json:"note,omitempty"`
}

// Found reports whether the quote carries a price
func (q PriceQuote) Found() bool {
	return q.Price != nil && q.PriceDate != nil
}
