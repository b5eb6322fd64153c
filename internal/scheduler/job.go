package scheduler

import (
	"context"
	"time"
)

// historyLimit caps results kept per job
const historyLimit = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule returns a six-field cron expression (seconds first),
	// e.g. "0 30 17 * * 1-5" for weekdays at 17:30, or a descriptor like "@daily"
	Schedule() string
}

// JobResult is the outcome of one activation, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobStats summarises the retained history of a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// history keeps the newest historyLimit results; callers hold the scheduler lock
type history struct {
	results []JobResult
}

func (h *history) add(r JobResult) {
	h.results = append(h.results, r)
	if over := len(h.results) - historyLimit; over > 0 {
		h.results = append(h.results[:0:0], h.results[over:]...)
	}
}

// latest returns a copy of the newest n results, oldest first
func (h *history) latest(n int) []JobResult {
	if n > len(h.results) {
		n = len(h.results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return append([]JobResult(nil), h.results[len(h.results)-n:]...)
}

func (h *history) stats(name, schedule string) JobStats {
	st := JobStats{JobName: name, Schedule: schedule, TotalRuns: len(h.results)}

	for i := range h.results {
		r := &h.results[i]
		if r.Success {
			st.SuccessCount++
			st.LastSuccess = &r.StartTime
		} else {
			st.FailureCount++
			st.LastFailure = &r.StartTime
		}
		st.LastRun = &r.StartTime
	}
	if st.TotalRuns > 0 {
		st.SuccessRate = float64(st.SuccessCount) / float64(st.TotalRuns)
	}
	return st
}
