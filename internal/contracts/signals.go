package contracts

// ScoreComponents holds one value per composite-score component
type ScoreComponents struct {
	Velocity       float64 `json:"velocity"`
	SentimentShift float64 `json:"sentiment_shift"`
	Confirmation   float64 `json:"confirmation"`
	Price          float64 `json:"price"`
}

// ThemeScore is the S2 output for one theme.
// Score is relative to the other themes of the same run; never compare across runs.
type ThemeScore struct {
	ThemeID    string          `json:"theme_id"`
	Score      float64         `json:"score"`
	Components ScoreComponents `json:"components"` // z-scores
	Raw        ScoreComponents `json:"raw"`
}

// SignalType 시그널 유형
type SignalType string

const (
	SignalMomentum      SignalType = "Momentum"
	SignalDivergence    SignalType = "Divergence"
	SignalMeanReversion SignalType = "Mean Reversion"
	SignalRotation      SignalType = "Rotation"
)

// Confidence 신뢰도 등급
type Confidence string

const (
	ConfidenceVeryHigh   Confidence = "Very High"
	ConfidenceHigh       Confidence = "High"
	ConfidenceMediumHigh Confidence = "Medium-High"
	ConfidenceMedium     Confidence = "Medium"
	ConfidenceMediumLow  Confidence = "Medium-Low"
)

// Timing 진입 타이밍
type Timing string

const (
	TimingNow         Timing = "Now"
	TimingNowVolatile Timing = "Now (volatile)"
	TimingBuilding    Timing = "Building"
	TimingOngoing     Timing = "Ongoing"
	TimingEarly       Timing = "Early"
)

// ThemeClassification is the S3 output for one theme
type ThemeClassification struct {
	SignalType SignalType `json:"signal_type"`
	Confidence Confidence `json:"confidence"`
	Timing     Timing     `json:"timing"`
	Stars      int        `json:"stars"` // 1~5, rank-relative
}

// RankedTheme is one row of a run's ranked report passed from S3 to the ledger
// ⭐ SSOT: S3 → Ledger 랭킹 결과 전달
type RankedTheme struct {
	Rank           int                 `json:"rank"` // 1-based
	Theme          ThemeDefinition     `json:"theme"`
	Metrics        ThemeMetrics        `json:"metrics"`
	Score          ThemeScore          `json:"score"`
	Classification ThemeClassification `json:"classification"`
}

// IsTopRanked checks if the theme is in top N ranks
func (r *RankedTheme) IsTopRanked(n int) bool {
	return r.Rank <= n && r.Rank > 0
}
