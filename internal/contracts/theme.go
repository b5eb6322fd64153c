package contracts

// ThemeDefinition is static theme configuration (keywords + seed tickers)
// ⭐ SSOT: 테마 정의 구조체는 여기서만
type ThemeDefinition struct {
	ThemeID      string   `yaml:"theme_id" json:"theme_id"`
	DisplayName  string   `yaml:"display_name" json:"display_name"`
	Keywords     []string `yaml:"keywords" json:"keywords"`
	SeedTickers  []string `yaml:"seed_tickers" json:"seed_tickers"`
	ProxyETF     string   `yaml:"proxy_etf,omitempty" json:"proxy_etf,omitempty"`
	RiskKeywords []string `yaml:"risk_keywords,omitempty" json:"risk_keywords,omitempty"`
}

// PriceSignal is the optional price-derived extension of ThemeMetrics.
// A nil *PriceSignal means price data is absent for the theme.
type PriceSignal struct {
	MomentumScore   float64 `json:"momentum_score"`
	DivergenceScore float64 `json:"divergence_score"`
}

// EvidenceLink is one supporting document surfaced in the report
type EvidenceLink struct {
	Permalink  string `json:"permalink"`
	Subreddit  string `json:"subreddit"`
	Score      int    `json:"score"`
	CreatedUTC int64  `json:"created_utc"`
	IsComment  bool   `json:"is_comment"`
	Snippet    string `json:"snippet"`
}

// ThemeMetrics is the per-theme, per-run output of S1
// ⭐ SSOT: S1 → S2 테마 지표 전달
type ThemeMetrics struct {
	ThemeID     string `json:"theme_id"`
	DisplayName string `json:"display_name"`
	ProxyETF    string `json:"proxy_etf,omitempty"`

	// Mention counts
	MentionsRecent   int   `json:"mentions_L"`
	MentionsBaseline int   `json:"mentions_B"`
	DailyCounts      []int `json:"daily_counts"`

	// Velocity
	CurrentRate       float64 `json:"current_rate"`
	BaselineRate      float64 `json:"baseline_rate"`
	GrowthRatio       float64 `json:"growth_ratio"`
	GrowthRatioCapped bool    `json:"growth_ratio_capped"`
	Slope             float64 `json:"slope"`

	// Sentiment
	SentimentCurrent  float64 `json:"sentiment_current"`
	SentimentBaseline float64 `json:"sentiment_baseline"`
	SentimentShift    float64 `json:"sentiment_shift"`

	// Diversity
	UniqueSubreddits  int     `json:"unique_subreddits"`
	Concentration     float64 `json:"concentration"`
	ConfirmationScore float64 `json:"confirmation_score"`
	RiskMentions      int     `json:"risk_mentions"`

	KeyTickers    []string       `json:"key_tickers"`
	EvidenceLinks []EvidenceLink `json:"evidence_links"`

	Price *PriceSignal `json:"price,omitempty"`
}

// PriceAvailable reports whether price-derived scores exist for the theme
func (m *ThemeMetrics) PriceAvailable() bool {
	return m.Price != nil
}

// MetricsResult is what ComputeMetrics returns for one run
type MetricsResult struct {
	Docs         int            `json:"docs"`
	Metrics      []ThemeMetrics `json:"metrics"`
	LookbackDays int            `json:"lookback_days"`
	BaselineDays int            `json:"baseline_days"`
	WindowEndUTC int64          `json:"window_end_utc"`
}

// Get returns metrics for a theme ID
func (r *MetricsResult) Get(themeID string) (*ThemeMetrics, bool) {
	for i := range r.Metrics {
		if r.Metrics[i].ThemeID == themeID {
			return &r.Metrics[i], true
		}
	}
	return nil, false
}
