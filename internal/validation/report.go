package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/themeradar/internal/contracts"
)

// Config bundles every knob of the evaluation report
type Config struct {
	MinSampleSize int               `yaml:"min_sample_size" json:"min_sample_size"`
	NullHitRate   float64           `yaml:"null_hit_rate" json:"null_hit_rate"`
	Alpha         float64           `yaml:"alpha" json:"alpha"`
	WalkForward   WalkForwardConfig `yaml:"walk_forward" json:"walk_forward"`
	Governance    GovernanceConfig  `yaml:"governance" json:"governance"`
}

// DefaultConfig returns the production validation defaults
func DefaultConfig() Config {
	return Config{
		MinSampleSize: 30,
		NullHitRate:   0.5,
		Alpha:         0.05,
		WalkForward:   DefaultWalkForwardConfig(),
		Governance:    DefaultGovernanceConfig(),
	}
}

// =============================================================================
// Report types
// =============================================================================

// SampleStats describes one set of resolved predictions
type SampleStats struct {
	HitRate      HitRate   `json:"hit_rate"`
	MeanReturn   float64   `json:"mean_return_pct"`
	MedianReturn float64   `json:"median_return_pct"`
	BinomialP    float64   `json:"binomial_p_value"`
	RankIC       ICSummary `json:"rank_ic"`
}

// BucketStats is SampleStats for one confidence or timing label
type BucketStats struct {
	Bucket string `json:"bucket"`
	SampleStats
}

// SliceStats is the out-of-sample result of one walk-forward slice
type SliceStats struct {
	SliceID    int         `json:"slice_id"`
	TrainStart string      `json:"train_start"`
	TrainEnd   string      `json:"train_end"`
	TestStart  string      `json:"test_start"`
	TestEnd    string      `json:"test_end"`
	Train      HitRate     `json:"train_hit_rate"`
	Test       SampleStats `json:"test"`
}

// WalkForwardReport aggregates all slices
type WalkForwardReport struct {
	Config       WalkForwardConfig `json:"config"`
	SliceCount   int               `json:"slice_count"`
	Slices       []SliceStats      `json:"slices"`
	OutOfSample  HitRate           `json:"out_of_sample_hit_rate"`
	OOSBinomialP float64           `json:"out_of_sample_binomial_p_value"`
}

// MultipleTestingReport is the Holm-corrected hypothesis family
type MultipleTestingReport struct {
	Method  string       `json:"method"`
	Alpha   float64      `json:"alpha"`
	Results []HolmResult `json:"results"`
}

// EvaluationReport is the JSON-serializable robustness report over the ledger
type EvaluationReport struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	TotalPredictions  int                   `json:"total_predictions"`
	Pending           int                   `json:"pending"`
	Evaluated         int                   `json:"evaluated"`
	Resolved          int                   `json:"resolved"`
	Unresolved        int                   `json:"unresolved"`
	UnresolvedRate    float64               `json:"unresolved_rate"`
	FullSample        SampleStats           `json:"full_sample"`
	ByConfidence      []BucketStats         `json:"by_confidence"`
	ByTiming          []BucketStats         `json:"by_timing"`
	WalkForward       WalkForwardReport     `json:"walk_forward"`
	MultipleTesting   MultipleTestingReport `json:"multiple_testing"`
	GovernanceStatus  string                `json:"governance_status"`
	GovernanceReasons []string              `json:"governance_reasons"`
}

// =============================================================================
// Building
// =============================================================================

// BuildEvaluationReport computes the full robustness report over all ledger rows.
// ⭐ SSOT: 검증 리포트 생성은 여기서만
// Only resolved rows (hit 0/1) enter accuracy statistics; unresolved rows count toward
// the unresolved rate only.
func BuildEvaluationReport(rows []contracts.SignalPrediction, cfg Config) (*EvaluationReport, error) {
	if err := cfg.WalkForward.Validate(); err != nil {
		return nil, fmt.Errorf("walk-forward config: %w", err)
	}

	binom := NewBinomial()
	report := &EvaluationReport{
		GeneratedAt:      time.Now().UTC(),
		TotalPredictions: len(rows),
	}

	var resolved []contracts.SignalPrediction
	for i := range rows {
		r := rows[i]
		switch {
		case !r.IsEvaluated():
			report.Pending++
		case r.IsResolved():
			report.Evaluated++
			report.Resolved++
			resolved = append(resolved, r)
		default:
			report.Evaluated++
			report.Unresolved++
		}
	}
	if report.Evaluated > 0 {
		report.UnresolvedRate = float64(report.Unresolved) / float64(report.Evaluated)
	}

	full, err := sampleStats(resolved, cfg, binom)
	if err != nil {
		return nil, err
	}
	report.FullSample = full

	family := []Hypothesis{{ID: "full_sample", PValue: full.BinomialP}}

	report.ByConfidence, err = bucketStats(resolved, cfg, binom, func(r contracts.SignalPrediction) string { return r.Confidence })
	if err != nil {
		return nil, err
	}
	report.ByTiming, err = bucketStats(resolved, cfg, binom, func(r contracts.SignalPrediction) string { return r.Timing })
	if err != nil {
		return nil, err
	}
	for _, b := range report.ByConfidence {
		family = append(family, Hypothesis{ID: "confidence:" + b.Bucket, PValue: b.BinomialP})
	}
	for _, b := range report.ByTiming {
		family = append(family, Hypothesis{ID: "timing:" + b.Bucket, PValue: b.BinomialP})
	}

	wf, err := walkForward(resolved, cfg, binom)
	if err != nil {
		return nil, err
	}
	report.WalkForward = wf
	if wf.OutOfSample.Total > 0 {
		family = append(family, Hypothesis{ID: "walk_forward_oos", PValue: wf.OOSBinomialP})
	}

	holm, err := Holm(family, cfg.Alpha)
	if err != nil {
		return nil, fmt.Errorf("multiple testing: %w", err)
	}
	report.MultipleTesting = MultipleTestingReport{Method: "holm", Alpha: cfg.Alpha, Results: holm}

	verdict := Governance(report.Resolved, report.UnresolvedRate, wf.SliceCount, cfg.Governance)
	report.GovernanceStatus = verdict.Status
	report.GovernanceReasons = verdict.Reasons

	return report, nil
}

func sampleStats(rows []contracts.SignalPrediction, cfg Config, binom *Binomial) (SampleStats, error) {
	hits := 0
	returns := make([]float64, 0, len(rows))
	for i := range rows {
		if *rows[i].Hit == 1 {
			hits++
		}
		if rows[i].ReturnPct != nil {
			returns = append(returns, *rows[i].ReturnPct)
		}
	}

	p, err := binom.TwoSided(hits, len(rows), cfg.NullHitRate)
	if err != nil {
		return SampleStats{}, fmt.Errorf("binomial test: %w", err)
	}

	return SampleStats{
		HitRate:      ComputeHitRate(hits, len(rows), cfg.MinSampleSize),
		MeanReturn:   mean(returns),
		MedianReturn: Quantile(returns, 0.5),
		BinomialP:    p,
		RankIC:       SummarizeIC(RankICByDate(rows)),
	}, nil
}

func bucketStats(
	rows []contracts.SignalPrediction,
	cfg Config,
	binom *Binomial,
	label func(contracts.SignalPrediction) string,
) ([]BucketStats, error) {
	groups := make(map[string][]contracts.SignalPrediction)
	for _, r := range rows {
		groups[label(r)] = append(groups[label(r)], r)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]BucketStats, 0, len(names))
	for _, name := range names {
		s, err := sampleStats(groups[name], cfg, binom)
		if err != nil {
			return nil, err
		}
		out = append(out, BucketStats{Bucket: name, SampleStats: s})
	}
	return out, nil
}

func walkForward(rows []contracts.SignalPrediction, cfg Config, binom *Binomial) (WalkForwardReport, error) {
	slices, err := WalkForwardSlices(datesOf(rows), cfg.WalkForward)
	if err != nil {
		return WalkForwardReport{}, err
	}

	byDate := make(map[string][]contracts.SignalPrediction)
	for _, r := range rows {
		key := r.SignalDate.Format(contracts.DateLayout)
		byDate[key] = append(byDate[key], r)
	}
	collect := func(dates []time.Time) []contracts.SignalPrediction {
		var out []contracts.SignalPrediction
		for _, d := range dates {
			out = append(out, byDate[d.Format(contracts.DateLayout)]...)
		}
		return out
	}

	report := WalkForwardReport{Config: cfg.WalkForward, SliceCount: len(slices), Slices: []SliceStats{}}
	oosHits, oosTotal := 0, 0
	for _, s := range slices {
		train := collect(s.TrainDates)
		test := collect(s.TestDates)

		testStats, err := sampleStats(test, cfg, binom)
		if err != nil {
			return WalkForwardReport{}, err
		}
		oosHits += testStats.HitRate.Hits
		oosTotal += testStats.HitRate.Total

		report.Slices = append(report.Slices, SliceStats{
			SliceID:    s.SliceID,
			TrainStart: s.TrainStart.Format(contracts.DateLayout),
			TrainEnd:   s.TrainEnd.Format(contracts.DateLayout),
			TestStart:  s.TestStart.Format(contracts.DateLayout),
			TestEnd:    s.TestEnd.Format(contracts.DateLayout),
			Train:      ComputeHitRate(countHits(train), len(train), cfg.MinSampleSize),
			Test:       testStats,
		})
	}

	report.OutOfSample = ComputeHitRate(oosHits, oosTotal, cfg.MinSampleSize)
	p, err := binom.TwoSided(oosHits, oosTotal, cfg.NullHitRate)
	if err != nil {
		return WalkForwardReport{}, fmt.Errorf("binomial test: %w", err)
	}
	report.OOSBinomialP = p
	return report, nil
}

func countHits(rows []contracts.SignalPrediction) int {
	n := 0
	for i := range rows {
		if rows[i].Hit != nil && *rows[i].Hit == 1 {
			n++
		}
	}
	return n
}

// =============================================================================
// Text rendering
// =============================================================================

// RenderText renders the report as a flat, line-oriented text report
func RenderText(r *EvaluationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "THEME SIGNAL EVALUATION REPORT\n")
	fmt.Fprintf(&b, "generated_at: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "governance: %s\n", strings.ToUpper(r.GovernanceStatus))
	for _, reason := range r.GovernanceReasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}

	fmt.Fprintf(&b, "\nLEDGER\n")
	fmt.Fprintf(&b, "  predictions: %d  pending: %d  evaluated: %d\n", r.TotalPredictions, r.Pending, r.Evaluated)
	fmt.Fprintf(&b, "  resolved: %d  unresolved: %d  unresolved_rate: %.1f%%\n", r.Resolved, r.Unresolved, r.UnresolvedRate*100)

	fmt.Fprintf(&b, "\nFULL SAMPLE\n")
	writeStats(&b, "  ", r.FullSample)

	writeBuckets(&b, "BY CONFIDENCE", r.ByConfidence)
	writeBuckets(&b, "BY TIMING", r.ByTiming)

	wf := r.WalkForward
	mode := "expanding"
	if !wf.Config.ExpandingWindow {
		mode = "rolling"
	}
	fmt.Fprintf(&b, "\nWALK-FORWARD (%s, train>=%d test=%d)\n", mode, wf.Config.MinTrainSize, wf.Config.TestSize)
	fmt.Fprintf(&b, "  slices: %d\n", wf.SliceCount)
	for _, s := range wf.Slices {
		fmt.Fprintf(&b, "  #%d train %s..%s (%s) | test %s..%s %s\n",
			s.SliceID, s.TrainStart, s.TrainEnd, formatHitRate(s.Train), s.TestStart, s.TestEnd, formatHitRate(s.Test.HitRate))
	}
	fmt.Fprintf(&b, "  out-of-sample: %s  p=%.4f\n", formatHitRate(wf.OutOfSample), wf.OOSBinomialP)

	fmt.Fprintf(&b, "\nMULTIPLE TESTING (%s, alpha=%.2f)\n", r.MultipleTesting.Method, r.MultipleTesting.Alpha)
	for _, h := range r.MultipleTesting.Results {
		mark := " "
		if h.Reject {
			mark = "*"
		}
		fmt.Fprintf(&b, "  %s %-28s p=%.4f adj=%.4f\n", mark, h.ID, h.PValue, h.Adjusted)
	}
	return b.String()
}

func writeBuckets(b *strings.Builder, title string, buckets []BucketStats) {
	fmt.Fprintf(b, "\n%s\n", title)
	if len(buckets) == 0 {
		fmt.Fprintf(b, "  (no resolved predictions)\n")
		return
	}
	for _, bucket := range buckets {
		fmt.Fprintf(b, "  [%s]\n", bucket.Bucket)
		writeStats(b, "    ", bucket.SampleStats)
	}
}

func writeStats(b *strings.Builder, indent string, s SampleStats) {
	fmt.Fprintf(b, "%shit_rate: %s\n", indent, formatHitRate(s.HitRate))
	fmt.Fprintf(b, "%sreturn_pct: mean %.2f median %.2f\n", indent, s.MeanReturn, s.MedianReturn)
	fmt.Fprintf(b, "%sbinomial_p: %.4f\n", indent, s.BinomialP)
	if s.RankIC.Dates > 0 {
		fmt.Fprintf(b, "%srank_ic: mean %.3f median %.3f iqr %.3f over %d dates\n",
			indent, s.RankIC.Mean, s.RankIC.Median, s.RankIC.IQR, s.RankIC.Dates)
	}
}

func formatHitRate(h HitRate) string {
	s := fmt.Sprintf("%d/%d = %.1f%% [%.1f%%, %.1f%%]", h.Hits, h.Total, h.Rate*100, h.Low*100, h.High*100)
	if h.SampleSizeWarning {
		s += " (small sample)"
	}
	return s
}
