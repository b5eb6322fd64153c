package brain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themeradar/internal/artifacts"
	"github.com/wonny/themeradar/internal/calendar"
	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/ledger"
	"github.com/wonny/themeradar/internal/s1_metrics"
	"github.com/wonny/themeradar/internal/s2_scoring"
	"github.com/wonny/themeradar/internal/sentiment"
	"github.com/wonny/themeradar/pkg/logger"
	"github.com/wonny/themeradar/pkg/redis"
)

type fakeSource struct {
	result *contracts.FetchResult
	err    error
}

func (f *fakeSource) Fetch(_ context.Context, subs []string) (*contracts.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	out.Subreddits = subs
	return &out, nil
}

type noPrices struct{}

func (noPrices) CloseOnOrAfter(_ context.Context, s string, _ time.Time, _ int) (contracts.PriceQuote, error) {
	return contracts.PriceQuote{Symbol: s, Note: "no data"}, nil
}

func (noPrices) CloseOnOrBefore(_ context.Context, s string, _ time.Time, _ int) (contracts.PriceQuote, error) {
	return contracts.PriceQuote{Symbol: s, Note: "no data"}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []contracts.StageEvent
}

func (r *recorder) Publish(e contracts.StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Stage.ShortName() + ":" + e.Status
	}
	return out
}

var testThemes = []contracts.ThemeDefinition{
	{ThemeID: "defense", DisplayName: "Defense", Keywords: []string{"defense"}, SeedTickers: []string{"LMT"}, ProxyETF: "ITA"},
	{ThemeID: "nuclear", DisplayName: "Nuclear", Keywords: []string{"uranium"}, ProxyETF: "URA"},
	{ThemeID: "banks", DisplayName: "Banks", Keywords: []string{"regional bank"}, ProxyETF: "KRE"},
}

func radarPosts() *contracts.FetchResult {
	end := float64(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC).Unix())
	posts := []contracts.RawPost{
		{ID: "p1", Subreddit: "stocks", CreatedUTC: end, Title: "Defense budget up", Selftext: "$LMT looks great", Permalink: "/r/stocks/p1", Score: 30},
		{ID: "p2", Subreddit: "investing", CreatedUTC: end - 3600, Title: "More defense spending", Permalink: "/r/investing/p2", Score: 12},
		{ID: "p3", Subreddit: "wallstreetbets", CreatedUTC: end - 7200, Title: "LMT calls", Permalink: "/r/wallstreetbets/p3", Score: 50},
		{ID: "p4", Subreddit: "stocks", CreatedUTC: end - 86400, Title: "Uranium supply squeeze", Permalink: "/r/stocks/p4", Score: 8},
		{ID: "p5", Subreddit: "investing", CreatedUTC: end - 2*86400, Title: "uranium miners", Permalink: "/r/investing/p5", Score: 4},
		{ID: "p6", Subreddit: "stocks", CreatedUTC: end - 20*86400, Title: "regional bank scare", Permalink: "/r/stocks/p6", Score: 2},
	}
	return &contracts.FetchResult{GeneratedAt: time.Unix(int64(end), 0).UTC(), Posts: posts}
}

type harness struct {
	orch     *Orchestrator
	store    *ledger.MemoryStore
	reports  *artifacts.FileStore
	locker   *redis.Locker
	listener *recorder
	source   *fakeSource
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.Nop()
	store := ledger.NewMemoryStore()
	lc := ledger.NewLifecycle(store, noPrices{}, calendar.NewNYSE(), ledger.DefaultOptions(), log)
	reports := artifacts.NewFileStore(t.TempDir(), nil, log)
	locker := redis.NewLocker(redis.Disabled("test"))
	listener := &recorder{}
	source := &fakeSource{result: radarPosts()}

	orch := NewOrchestrator(
		source,
		s1_metrics.NewEngine(sentiment.NewLexicon(), log),
		s2_scoring.NewScorer(s2_scoring.DefaultWeights(), log),
		lc,
		reports,
		locker,
		listener,
		log,
	)
	orch.now = func() time.Time { return time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC) }

	return &harness{orch: orch, store: store, reports: reports, locker: locker, listener: listener, source: source}
}

func runConfig() RunConfig {
	return RunConfig{
		Subreddits:        []string{"stocks", "investing", "wallstreetbets"},
		Themes:            testThemes,
		Metrics:           s1_metrics.DefaultOptions(),
		TopN:              2,
		MinRecentMentions: 2,
		LockKey:           "pipeline",
		LockTTL:           time.Hour,
		Location:          time.UTC,
		ConfigHash:        "abc123",
	}
}

func TestRun_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cfg := runConfig()
	cfg.RunID = "run-1"
	summary, err := h.orch.Run(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, "2024-03-01", summary.SignalDate)
	assert.Equal(t, 6, summary.Docs)
	assert.Equal(t, 2, summary.RankedThemes)
	assert.Equal(t, 2, summary.StoredPredictions)
	assert.Len(t, summary.CompletedStages, len(contracts.AllStages()))
	assert.NotEmpty(t, summary.ReportPath)

	report, err := h.reports.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", report.ConfigHash)
	require.Len(t, report.Themes, 2)
	assert.Equal(t, "defense", report.Themes[0].Theme.ThemeID, "3 recent mentions across 3 subreddits")
	assert.Equal(t, "nuclear", report.Themes[1].Theme.ThemeID)

	rows, err := h.store.List(ctx, contracts.PredictionFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ITA", rows[0].ProxyETF)
	assert.Nil(t, rows[0].EntryPrice)

	statuses := h.listener.statuses()
	assert.Equal(t, "S0:started", statuses[0])
	assert.Equal(t, "S4:completed", statuses[len(statuses)-1])

	// same signal date again: first writer wins, lock was released
	cfg.RunID = "run-2"
	summary, err = h.orch.Run(ctx, cfg)
	require.NoError(t, err)
	assert.Zero(t, summary.StoredPredictions)
}

func TestRun_GeneratesRunID(t *testing.T) {
	h := newHarness(t)
	summary, err := h.orch.Run(context.Background(), runConfig())
	require.NoError(t, err)
	assert.Len(t, summary.RunID, 36)
}

func TestRun_LockConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ok, err := h.locker.Acquire(ctx, "pipeline", "someone-else", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = h.orch.Run(ctx, runConfig())
	assert.ErrorIs(t, err, contracts.ErrLockConflict)
	assert.Empty(t, h.listener.statuses(), "nothing runs without the lock")

	_, err = h.orch.Evaluate(ctx, "pipeline", time.Hour, time.UTC)
	assert.ErrorIs(t, err, contracts.ErrLockConflict)
}

func TestRun_NoDocs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.source.result = &contracts.FetchResult{}

	_, err := h.orch.Run(ctx, runConfig())
	require.ErrorIs(t, err, contracts.ErrNoDocs)
	assert.True(t, contracts.IsPrecondition(err))

	_, err = h.reports.Latest(ctx)
	assert.ErrorIs(t, err, artifacts.ErrNoReport, "no partial artifacts")

	assertLockFree(t, h)
}

func TestRun_InsufficientEvidence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cfg := runConfig()
	cfg.TopN = 3 // banks has no recent mentions
	_, err := h.orch.Run(ctx, cfg)
	require.ErrorIs(t, err, contracts.ErrInsufficientEvidence)

	rows, _ := h.store.List(ctx, contracts.PredictionFilter{})
	assert.Empty(t, rows)
	_, err = h.reports.Latest(ctx)
	assert.ErrorIs(t, err, artifacts.ErrNoReport)

	statuses := h.listener.statuses()
	assert.Equal(t, "S3:failed", statuses[len(statuses)-1])
	assertLockFree(t, h)
}

func TestRun_FetchError(t *testing.T) {
	h := newHarness(t)
	h.source.err = errors.New("upstream down")

	_, err := h.orch.Run(context.Background(), runConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	assert.False(t, contracts.IsPrecondition(err))
	assertLockFree(t, h)
}

type failingArtifacts struct{ contracts.ArtifactStore }

func (failingArtifacts) Save(context.Context, *contracts.Report, string) (string, error) {
	return "", errors.New("disk full")
}

func TestRun_ReportSaveFailure(t *testing.T) {
	h := newHarness(t)
	h.orch.artifacts = failingArtifacts{h.reports}
	ctx := context.Background()

	summary, err := h.orch.Run(ctx, runConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, contracts.IsPrecondition(err))
	assert.Empty(t, summary.ReportPath)

	statuses := h.listener.statuses()
	assert.Equal(t, []string{"RPT:started", "RPT:failed"}, statuses[len(statuses)-2:])

	events := h.listener.events
	assert.Equal(t, "save report: disk full", events[len(events)-1].Error)

	rows, _ := h.store.List(ctx, contracts.PredictionFilter{})
	assert.Empty(t, rows, "no ledger rows without a report")
	assertLockFree(t, h)
}

func TestEvaluate_ResolvesDuePredictions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.orch.Run(ctx, runConfig())
	require.NoError(t, err)

	// target date is 7 sessions out; nothing due on the signal date
	sum, err := h.orch.Evaluate(ctx, "pipeline", time.Hour, time.UTC)
	require.NoError(t, err)
	assert.Zero(t, sum.Evaluated)

	h.orch.now = func() time.Time { return time.Date(2024, 3, 20, 22, 0, 0, 0, time.UTC) }
	sum, err = h.orch.Evaluate(ctx, "pipeline", time.Hour, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, contracts.EvaluationSummary{Evaluated: 2, Unresolved: 2}, sum, "no entry prices")
}

func TestMarketDay(t *testing.T) {
	h := newHarness(t)
	// 2024-03-02 03:00 UTC is still 03-01 in New York
	h.orch.now = func() time.Time { return time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC) }
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), h.orch.marketDay(ny))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), h.orch.marketDay(nil))
}

func assertLockFree(t *testing.T, h *harness) {
	t.Helper()
	ok, err := h.locker.Acquire(context.Background(), "pipeline", "probe", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock must be released on every exit path")
}
