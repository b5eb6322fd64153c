package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
)

// ErrNotPending is returned when an evaluation targets a missing or already evaluated row
var ErrNotPending = errors.New("prediction not pending")

// Options controls prediction creation and evaluation
type Options struct {
	HorizonTradingDays int // target_date = signal_date + N sessions
	PriceSearchDays    int // forward search for the exit close
	EntrySearchDays    int // backward search for the entry close
	Concurrency        int // parallel price lookups
}

// DefaultOptions returns 7 sessions / 10 days forward / 7 days back / 4 workers
func DefaultOptions() Options {
	return Options{HorizonTradingDays: 7, PriceSearchDays: 10, EntrySearchDays: 7, Concurrency: 4}
}

// Lifecycle creates predictions from ranked themes and later resolves them
// ⭐ SSOT: 예측 생성/평가 생명주기는 여기서만
// State per row: pending → evaluated (resolved | unresolved), never mutated afterwards.
type Lifecycle struct {
	store    contracts.PredictionStore
	prices   contracts.PriceLookup
	calendar contracts.TradingCalendar
	opts     Options
	logger   *logger.Logger
	now      func() time.Time
}

// NewLifecycle creates a ledger lifecycle
func NewLifecycle(
	store contracts.PredictionStore,
	prices contracts.PriceLookup,
	calendar contracts.TradingCalendar,
	opts Options,
	log *logger.Logger,
) *Lifecycle {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Lifecycle{
		store:    store,
		prices:   prices,
		calendar: calendar,
		opts:     opts,
		logger:   log.Component("ledger"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// =============================================================================
// Creation
// =============================================================================

// StorePredictions persists one row per ranked theme for signalDate.
// Rows whose (signal_date, theme_id) already exist are skipped; returns rows inserted.
func (l *Lifecycle) StorePredictions(
	ctx context.Context,
	runID string,
	signalDate time.Time,
	ranked []contracts.RankedTheme,
) (int, error) {
	if len(ranked) == 0 {
		return 0, nil
	}

	day := truncateDay(signalDate)
	target := l.calendar.AddTradingDays(day, l.opts.HorizonTradingDays)
	entries := l.entryPrices(ctx, ranked, day)

	rows := make([]contracts.SignalPrediction, 0, len(ranked))
	for _, r := range ranked {
		row := contracts.SignalPrediction{
			RunID:      runID,
			SignalDate: day,
			TargetDate: target,
			ThemeID:    r.Theme.ThemeID,
			ThemeName:  r.Theme.DisplayName,
			Rank:       r.Rank,
			Score:      r.Score.Score,
			SignalType: string(r.Classification.SignalType),
			Confidence: string(r.Classification.Confidence),
			Timing:     string(r.Classification.Timing),
			Stars:      r.Classification.Stars,
			ProxyETF:   r.Theme.ProxyETF,
			CreatedAt:  l.now(),
		}
		if p, ok := entries[r.Theme.ProxyETF]; ok {
			price := p
			row.EntryPrice = &price
		}
		rows = append(rows, row)
	}

	inserted, err := l.store.InsertIfAbsent(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("store predictions: %w", err)
	}

	l.logger.WithFields(map[string]interface{}{
		"run_id":      runID,
		"signal_date": day.Format(contracts.DateLayout),
		"target_date": target.Format(contracts.DateLayout),
		"ranked":      len(ranked),
		"inserted":    inserted,
	}).Info("Stored predictions")
	return inserted, nil
}

// entryPrices looks up the close on or before day for each distinct proxy ETF.
// A failed or empty lookup leaves the symbol out; the row then resolves without outcome.
func (l *Lifecycle) entryPrices(ctx context.Context, ranked []contracts.RankedTheme, day time.Time) map[string]float64 {
	symbols := make(map[string]struct{})
	for _, r := range ranked {
		if r.Theme.ProxyETF != "" {
			symbols[r.Theme.ProxyETF] = struct{}{}
		}
	}

	var mu sync.Mutex
	out := make(map[string]float64, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for sym := range symbols {
		sym := sym
		g.Go(func() error {
			quote, err := l.prices.CloseOnOrBefore(gctx, sym, day, l.opts.EntrySearchDays)
			if err != nil {
				l.logger.WithError(err).WithField("symbol", sym).Warn("Entry price lookup failed")
				return nil
			}
			if !quote.Found() {
				l.logger.WithFields(map[string]interface{}{"symbol": sym, "note": quote.Note}).Warn("No entry price")
				return nil
			}
			mu.Lock()
			out[sym] = *quote.Price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never fail; lookups degrade to a missing entry price
	return out
}

// =============================================================================
// Evaluation
// =============================================================================

type rowOutcome int

const (
	outcomeError rowOutcome = iota
	outcomeHit
	outcomeMiss
	outcomeUnresolved
	outcomeDeferred
)

// EvaluatePendingPredictions resolves every pending row whose target_date ≤ today.
// Per-row failures are counted in Errors and leave the row pending; they never abort the batch.
func (l *Lifecycle) EvaluatePendingPredictions(ctx context.Context, today time.Time) (contracts.EvaluationSummary, error) {
	var summary contracts.EvaluationSummary

	cutoff := truncateDay(today)
	pending, err := l.store.List(ctx, contracts.PredictionFilter{PendingOnly: true, TargetTo: &cutoff})
	if err != nil {
		return summary, fmt.Errorf("list pending predictions: %w", err)
	}
	if len(pending) == 0 {
		return summary, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for i := range pending {
		row := pending[i]
		g.Go(func() error {
			outcome := l.evaluateRow(gctx, row, cutoff)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeError:
				summary.Errors++
			case outcomeHit:
				summary.Evaluated++
				summary.Hits++
			case outcomeMiss:
				summary.Evaluated++
			case outcomeUnresolved:
				summary.Evaluated++
				summary.Unresolved++
			case outcomeDeferred:
				summary.Deferred++
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	l.logger.WithFields(map[string]interface{}{
		"pending":    len(pending),
		"evaluated":  summary.Evaluated,
		"hits":       summary.Hits,
		"unresolved": summary.Unresolved,
		"deferred":   summary.Deferred,
		"errors":     summary.Errors,
	}).Info("Evaluated pending predictions")
	return summary, nil
}

// evaluateRow resolves one row and writes its evaluation exactly once
func (l *Lifecycle) evaluateRow(ctx context.Context, row contracts.SignalPrediction, today time.Time) rowOutcome {
	log := l.logger.WithFields(map[string]interface{}{
		"prediction_id": row.ID,
		"theme_id":      row.ThemeID,
		"signal_date":   row.SignalDate.Format(contracts.DateLayout),
	})

	eval, outcome, err := l.resolve(ctx, row, today)
	if err != nil {
		log.WithError(err).Warn("Price lookup failed; prediction stays pending")
		return outcomeError
	}
	if outcome == outcomeDeferred {
		log.Debug("Exit close not published yet; prediction stays pending")
		return outcome
	}

	if err := l.store.UpdateEvaluation(ctx, row.ID, eval); err != nil {
		log.WithError(err).Warn("Evaluation update failed")
		return outcomeError
	}
	return outcome
}

// resolve computes the evaluation without touching the store
// A missing exit close defers the row while the search window [target, target+PriceSearchDays] has not closed.
func (l *Lifecycle) resolve(ctx context.Context, row contracts.SignalPrediction, today time.Time) (contracts.PredictionEvaluation, rowOutcome, error) {
	eval := contracts.PredictionEvaluation{EvaluatedAt: l.now()}

	switch {
	case row.ProxyETF == "":
		eval.Note = "no proxy etf"
		return eval, outcomeUnresolved, nil
	case row.EntryPrice == nil:
		eval.Note = "no entry price"
		return eval, outcomeUnresolved, nil
	case *row.EntryPrice <= 0:
		eval.Note = "invalid entry price"
		return eval, outcomeUnresolved, nil
	}

	quote, err := l.prices.CloseOnOrAfter(ctx, row.ProxyETF, row.TargetDate, l.opts.PriceSearchDays)
	if err != nil {
		return eval, outcomeError, err
	}
	if !quote.Found() {
		if !today.After(row.TargetDate.AddDate(0, 0, l.opts.PriceSearchDays)) {
			return eval, outcomeDeferred, nil
		}
		eval.Note = quote.Note
		if eval.Note == "" {
			eval.Note = fmt.Sprintf("no close for %s within %d days of %s",
				row.ProxyETF, l.opts.PriceSearchDays, row.TargetDate.Format(contracts.DateLayout))
		}
		return eval, outcomeUnresolved, nil
	}

	ret := ReturnPct(*row.EntryPrice, *quote.Price)
	hit := 0
	outcome := outcomeMiss
	if ret > 0 {
		hit = 1
		outcome = outcomeHit
	}

	exit := *quote.Price
	exitDate := *quote.PriceDate
	eval.ExitPrice = &exit
	eval.ExitPriceDate = &exitDate
	eval.ReturnPct = &ret
	eval.Hit = &hit
	return eval, outcome, nil
}

// ReturnPct = round2((exit − entry) / entry · 100)
func ReturnPct(entry, exit float64) float64 {
	e := decimal.NewFromFloat(entry)
	pct := decimal.NewFromFloat(exit).Sub(e).Div(e).Mul(decimal.NewFromInt(100)).Round(2)
	f, _ := pct.Float64()
	return f
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
