package s1_metrics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/s0_docs"
	"github.com/wonny/themeradar/pkg/logger"
)

const secondsPerDay = 86400

// Options controls windowing and the tunable constants of the metrics engine
type Options struct {
	LookbackDays    int  // recent window length L
	BaselineDays    int  // baseline window length B
	IncludeComments bool // count comments as mentions

	GrowthCap           float64 // growth_ratio ceiling
	ConcentrationTopN   int     // posts summed for concentration
	ConfirmationDivisor float64 // unique subreddits needed for full confirmation
	KeyTickerLimit      int
	EvidenceLimit       int
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		LookbackDays:        7,
		BaselineDays:        30,
		IncludeComments:     true,
		GrowthCap:           25,
		ConcentrationTopN:   3,
		ConfirmationDivisor: 3,
		KeyTickerLimit:      8,
		EvidenceLimit:       5,
	}
}

func (o Options) validate() error {
	if o.LookbackDays < 1 {
		return fmt.Errorf("lookback_days must be >= 1, got %d", o.LookbackDays)
	}
	if o.BaselineDays < 1 {
		return fmt.Errorf("baseline_days must be >= 1, got %d", o.BaselineDays)
	}
	if o.GrowthCap <= 0 || o.ConfirmationDivisor <= 0 || o.ConcentrationTopN < 1 {
		return fmt.Errorf("growth_cap, confirmation_divisor and concentration_top_n must be positive")
	}
	return nil
}

// Engine computes per-theme metrics for one run
// ⭐ SSOT: S1 테마 지표 계산은 여기서만
type Engine struct {
	scorer contracts.SentimentScorer
	logger *logger.Logger
}

// NewEngine creates a metrics engine over a sentiment collaborator
func NewEngine(scorer contracts.SentimentScorer, log *logger.Logger) *Engine {
	return &Engine{scorer: scorer, logger: log.Component("s1_metrics")}
}

// docView caches per-document derived data shared read-only by all themes
type docView struct {
	doc       contracts.Document
	tickers   []string
	sentiment float64
}

// windows holds the run's time boundaries (unix seconds)
type windows struct {
	end           int64
	recentStart   int64
	baselineStart int64
}

func (w windows) inRecent(t int64) bool   { return t > w.recentStart && t <= w.end }
func (w windows) inBaseline(t int64) bool { return t > w.baselineStart && t <= w.recentStart }

// ComputeMetrics computes metrics for every theme over the same document set.
// The window end is the newest document, not wall-clock time. Output order follows themes.
func (e *Engine) ComputeMetrics(
	ctx context.Context,
	docs []contracts.Document,
	themes []contracts.ThemeDefinition,
	opts Options,
) (*contracts.MetricsResult, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics options: %w", err)
	}

	if len(docs) == 0 {
		return nil, contracts.ErrNoDocs
	}

	// window end spans every document, comments included even when they are not counted
	var end int64
	for _, d := range docs {
		if d.CreatedUTC > end {
			end = d.CreatedUTC
		}
	}
	views := e.analyze(docs, opts.IncludeComments)
	recentStart := end - int64(opts.LookbackDays)*secondsPerDay
	w := windows{
		end:           end,
		recentStart:   recentStart,
		baselineStart: recentStart - int64(opts.BaselineDays)*secondsPerDay,
	}

	e.logger.WithFields(map[string]interface{}{
		"docs":          len(views),
		"themes":        len(themes),
		"window_end":    end,
		"lookback_days": opts.LookbackDays,
		"baseline_days": opts.BaselineDays,
	}).Info("Computing theme metrics")

	// themes are independent: each goroutine reads views and writes only its own slot
	results := make([]contracts.ThemeMetrics, len(themes))
	g, gctx := errgroup.WithContext(ctx)
	for i := range themes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = computeTheme(themes[i], views, w, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute metrics: %w", err)
	}

	return &contracts.MetricsResult{
		Docs:         len(views),
		Metrics:      results,
		LookbackDays: opts.LookbackDays,
		BaselineDays: opts.BaselineDays,
		WindowEndUTC: end,
	}, nil
}

// analyze extracts tickers and sentiment once per document
func (e *Engine) analyze(docs []contracts.Document, includeComments bool) []docView {
	views := make([]docView, 0, len(docs))
	for _, d := range docs {
		if d.IsComment && !includeComments {
			continue
		}
		views = append(views, docView{
			doc:       d,
			tickers:   s0_docs.ExtractTickers(d.Text),
			sentiment: e.scorer.Score(d.Text),
		})
	}
	return views
}

// computeTheme is a pure function of one theme and the shared document views
func computeTheme(theme contracts.ThemeDefinition, views []docView, w windows, opts Options) contracts.ThemeMetrics {
	matcher := s0_docs.NewMatcher(theme)

	m := contracts.ThemeMetrics{
		ThemeID:     theme.ThemeID,
		DisplayName: theme.DisplayName,
		ProxyETF:    theme.ProxyETF,
		DailyCounts: make([]int, opts.LookbackDays),
	}

	var (
		sentRecent, sentBaseline float64
		subreddits               = make(map[string]struct{})
		perPost                  = make(map[string]int)
		tickerFreq               = make(map[string]int)
		evidence                 []contracts.Document
	)

	for _, v := range views {
		t := v.doc.CreatedUTC
		recent := w.inRecent(t)
		if !recent && !w.inBaseline(t) {
			continue
		}
		if !matcher.IsMention(v.doc.Text, v.tickers) {
			continue
		}
		evidence = append(evidence, v.doc)

		if !recent {
			m.MentionsBaseline++
			sentBaseline += v.sentiment
			continue
		}

		m.MentionsRecent++
		sentRecent += v.sentiment
		m.DailyCounts[bucketIndex(t, w.recentStart, opts.LookbackDays)]++
		subreddits[v.doc.Subreddit] = struct{}{}
		perPost[v.doc.PostID]++
		for _, tk := range v.tickers {
			tickerFreq[tk]++
		}
		if matcher.MatchesRisk(v.doc.Text) {
			m.RiskMentions++
		}
	}

	m.CurrentRate = rate(m.MentionsRecent, opts.LookbackDays)
	m.BaselineRate = rate(m.MentionsBaseline, opts.BaselineDays)
	m.GrowthRatio, m.GrowthRatioCapped = GrowthRatio(m.CurrentRate, m.BaselineRate, opts.GrowthCap)
	m.Slope = Slope(m.DailyCounts)

	if m.MentionsRecent > 0 {
		m.SentimentCurrent = sentRecent / float64(m.MentionsRecent)
	}
	if m.MentionsBaseline > 0 {
		m.SentimentBaseline = sentBaseline / float64(m.MentionsBaseline)
	}
	m.SentimentShift = m.SentimentCurrent - m.SentimentBaseline

	m.UniqueSubreddits = len(subreddits)
	m.Concentration = Concentration(perPost, m.MentionsRecent, opts.ConcentrationTopN)
	m.ConfirmationScore = Confirmation(m.UniqueSubreddits, m.Concentration, opts.ConfirmationDivisor)

	m.KeyTickers = KeyTickers(theme.SeedTickers, tickerFreq, opts.KeyTickerLimit)
	m.EvidenceLinks = EvidenceLinks(evidence, opts.EvidenceLimit)

	return m
}

// bucketIndex maps a recent-window timestamp to its day index in [0, days)
func bucketIndex(t, recentStart int64, days int) int {
	idx := int((t - recentStart) / secondsPerDay)
	if idx < 0 {
		return 0
	}
	if idx >= days {
		return days - 1
	}
	return idx
}

func rate(mentions, days int) float64 {
	if days < 1 {
		days = 1
	}
	return float64(mentions) / float64(days)
}
