package contracts

import "time"

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 리포트, 스트림 이벤트에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Docs  Metrics  Scoring  Classify  Ledger  Evaluate

// Stage represents a pipeline stage
type Stage string

const (
	// StageDocuments S0: 문서 수집 및 정규화
	// 위치: internal/s0_docs/
	StageDocuments Stage = "S0_DOCUMENTS"

	// StageMetrics S1: 테마별 지표 계산 (recent vs baseline)
	// 위치: internal/s1_metrics/
	StageMetrics Stage = "S1_METRICS"

	// StageScoring S2: z-score 종합 점수
	// 위치: internal/s2_scoring/
	StageScoring Stage = "S2_SCORING"

	// StageClassify S3: 시그널 분류 및 별점
	// 위치: internal/s3_classify/
	StageClassify Stage = "S3_CLASSIFY"

	// StageReport 리포트 아티팩트 저장 (S3 이후, S5 이전)
	StageReport Stage = "REPORT"

	// StageLedger S4: 예측 원장 저장
	// 위치: internal/ledger/
	StageLedger Stage = "S4_LEDGER"

	// StageEvaluate S5: 미평가 예측 평가
	// 위치: internal/ledger/
	StageEvaluate Stage = "S5_EVALUATE"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageDocuments:
		return "S0"
	case StageMetrics:
		return "S1"
	case StageScoring:
		return "S2"
	case StageClassify:
		return "S3"
	case StageReport:
		return "RPT"
	case StageLedger:
		return "S4"
	case StageEvaluate:
		return "S5"
	default:
		return "UNKNOWN"
	}
}

// AllStages returns all pipeline stages in execution order
func AllStages() []Stage {
	return []Stage{
		StageDocuments,
		StageMetrics,
		StageScoring,
		StageClassify,
		StageReport,
		StageEvaluate,
		StageLedger,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineLock is the global single-run guard; it exists only while a run is in flight
type PipelineLock struct {
	Key        string        `json:"lock_key"`
	Token      string        `json:"token"`
	AcquiredAt time.Time     `json:"acquired_at"`
	TTL        time.Duration `json:"ttl"`
}

// ExpiresAt returns when a stale lock auto-expires
func (l PipelineLock) ExpiresAt() time.Time {
	return l.AcquiredAt.Add(l.TTL)
}

// StageEvent is published while a run progresses
type StageEvent struct {
	RunID     string    `json:"run_id"`
	Stage     Stage     `json:"stage"`
	Status    string    `json:"status"` // started, completed, failed
	Count     int       `json:"count"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Report is the artifact written for one completed run
type Report struct {
	RunID        string        `json:"run_id"`
	GeneratedAt  time.Time     `json:"generated_at"`
	SignalDate   string        `json:"signal_date"`
	ConfigHash   string        `json:"config_hash"`
	Subreddits   []string      `json:"subreddits"`
	Docs         int           `json:"docs"`
	LookbackDays int           `json:"lookback_days"`
	BaselineDays int           `json:"baseline_days"`
	WindowEndUTC int64         `json:"window_end_utc"`
	Themes       []RankedTheme `json:"themes"`
}

// RunSummary is the compact outcome of one pipeline run
type RunSummary struct {
	RunID              string            `json:"run_id"`
	SignalDate         string            `json:"signal_date"`
	Docs               int               `json:"docs"`
	RankedThemes       int               `json:"ranked_themes"`
	StoredPredictions  int               `json:"stored_predictions"`
	Evaluation         EvaluationSummary `json:"evaluation"`
	ReportPath         string            `json:"report_path,omitempty"`
	CompletedStages    []string          `json:"completed_stages"`
	DurationMS         int64             `json:"duration_ms"`
}
