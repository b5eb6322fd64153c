package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/themeradar/internal/api/handlers"
	"github.com/wonny/themeradar/internal/artifacts"
	"github.com/wonny/themeradar/internal/brain"
	"github.com/wonny/themeradar/internal/calendar"
	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/external/stooq"
	"github.com/wonny/themeradar/internal/ledger"
	"github.com/wonny/themeradar/internal/s0_docs"
	"github.com/wonny/themeradar/internal/s1_metrics"
	"github.com/wonny/themeradar/internal/s2_scoring"
	"github.com/wonny/themeradar/internal/sentiment"
	"github.com/wonny/themeradar/internal/themeconfig"
	"github.com/wonny/themeradar/pkg/config"
	"github.com/wonny/themeradar/pkg/database"
	"github.com/wonny/themeradar/pkg/httputil"
	"github.com/wonny/themeradar/pkg/logger"
	"github.com/wonny/themeradar/pkg/redis"
)

// documentTimeout bounds one document payload download
const documentTimeout = 60 * time.Second

// app holds every wired component of one process
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	redis  *redis.Client
	cache  *redis.Cache
	themes *themeconfig.Config
	hash   string

	store   contracts.PredictionStore
	reports *artifacts.FileStore
	service *brain.Service
	hub     *handlers.Hub // stage events of in-flight runs
}

// loadBase reads env + theme config and builds the logger
func loadBase() (*config.Config, *logger.Logger, *themeconfig.Config, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if themesFile != "" {
		cfg.Pipeline.ThemesFile = themesFile
	}

	log := logger.New(cfg)

	themes, _, err := themeconfig.Load(cfg.Pipeline.ThemesFile)
	if err != nil {
		return nil, nil, nil, "", err
	}
	for _, w := range themeconfig.CheckWarnings(themes) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Theme config warning")
	}

	hash, err := themeconfig.Hash(themes)
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("hash theme config: %w", err)
	}
	return cfg, log, themes, hash, nil
}

// newApp wires storage, the price client and the orchestrator
func newApp(ctx context.Context) (*app, error) {
	cfg, log, themes, hash, err := loadBase()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, themes: themes, hash: hash, hub: handlers.NewHub(log.Component("stream"))}

	a.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, falling back to local lock and no cache")
		a.redis = redis.Disabled(cfg.Redis.Prefix)
	}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	source, err := a.documentSource()
	if err != nil {
		a.Close()
		return nil, err
	}

	cache := redis.NewCache(a.redis)
	a.cache = cache
	limiter := redis.NewRateLimiter(a.redis)

	priceHTTP := httputil.New(log.Component("stooq"), cfg.Prices.Timeout).
		WithRetry(2, time.Second).
		WithRateLimiter(limiter, redis.PriceRateLimit)
	prices := stooq.NewClient(priceHTTP, cfg.Prices.BaseURL, cfg.Prices.RatePerSec, cache, log)

	lifecycle := ledger.NewLifecycle(a.store, prices, calendar.NewNYSE(), ledger.Options{
		HorizonTradingDays: cfg.Pipeline.HorizonTradingDays,
		PriceSearchDays:    cfg.Pipeline.PriceSearchDays,
		EntrySearchDays:    cfg.Pipeline.EntrySearchDays,
		Concurrency:        cfg.Pipeline.EvalConcurrency,
	}, log)

	a.reports = artifacts.NewFileStore(cfg.Pipeline.ReportsDir, cache, log)

	orch := brain.NewOrchestrator(
		source,
		s1_metrics.NewEngine(sentiment.NewLexicon(), log),
		s2_scoring.NewScorer(themes.Scoring.Weights, log),
		lifecycle,
		a.reports,
		redis.NewLocker(a.redis),
		a.hub,
		log,
	)

	p := cfg.Pipeline
	a.service = brain.NewService(orch, brain.RunConfig{
		Subreddits:        p.Subreddits,
		Themes:            themes.Themes,
		Metrics:           themes.MetricsOptions(p.LookbackDays, p.BaselineDays, p.IncludeComments),
		TopN:              p.TopN,
		MinRecentMentions: p.MinRecentMentions,
		LockKey:           p.LockKey,
		LockTTL:           p.LockTTL,
		Location:          p.Location(),
		ConfigHash:        hash,
	})

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Ledger.Driver {
	case "memory":
		a.log.Warn("Using in-memory ledger; predictions are lost on exit")
		a.store = ledger.NewMemoryStore()
		return nil
	default:
		db, err := database.New(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.db = db

		pg := ledger.NewPostgresStore(db.Pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure ledger schema: %w", err)
		}
		a.store = pg
		a.log.Info("Connected to ledger database")
		return nil
	}
}

func (a *app) documentSource() (contracts.DocumentSource, error) {
	d := a.cfg.Documents
	switch {
	case d.File != "":
		return s0_docs.NewFileSource(d.File, a.log.Component("documents")), nil
	case d.URL != "":
		hc := httputil.New(a.log.Component("documents"), documentTimeout).
			WithRateLimiter(redis.NewRateLimiter(a.redis), redis.DocumentRateLimit)
		return s0_docs.NewHTTPSource(hc, d.URL, a.log.Component("documents")), nil
	default:
		return nil, fmt.Errorf("no document source: set DOCUMENTS_FILE or DOCUMENTS_URL")
	}
}

// Close releases the database pool and redis connection
func (a *app) Close() {
	if a.redis != nil && a.redis.Enabled() {
		st := a.cache.Stats()
		a.log.WithFields(map[string]interface{}{
			"hits":   st.Hits,
			"misses": st.Misses,
		}).Debug("Cache usage")
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
