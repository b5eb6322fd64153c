package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/themeradar/internal/scheduler"
	"github.com/wonny/themeradar/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 데몬 시작",
	Long: `장 마감 후 파이프라인과 주간 원장 검증을 스케줄합니다.
크론 표현식은 MARKET_TIMEZONE 기준으로 해석됩니다.

등록되는 작업:
- radar_pipeline: PIPELINE_SCHEDULE (기본 평일 17:30)
- ledger_validation: VALIDATION_SCHEDULE (기본 토요일 09:00)

Subcommands:
  run [job_name] - 특정 작업 즉시 실행

Example:
  go run ./cmd/themeradar scheduler
  go run ./cmd/themeradar scheduler run radar_pipeline`,
	RunE: runScheduler,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "특정 작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	p := a.cfg.Pipeline
	sched := scheduler.New(p.Location(), a.log, scheduler.WithJobTimeout(p.LockTTL))

	log := a.log.Component("jobs")
	if err := sched.AddJob(jobs.NewPipelineJob(a.service, p.Schedule, log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewValidationJob(a.store, a.themes.Validation, p.ValidationSchedule, log)); err != nil {
		return nil, err
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	sched.Start()

	out := cmd.OutOrStdout()
	printHeader(out, "THEME RADAR SCHEDULER")
	for _, name := range sched.GetAllJobs() {
		next, _ := sched.NextRun(name)
		fmt.Fprintf(out, "  - %-18s next %s\n", name, next.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	<-ctx.Done()
	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunNow(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Success {
		printWarning(out, fmt.Sprintf("%s failed after %d attempt(s): %s", result.JobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", result.JobName)
	}
	printSuccess(out, fmt.Sprintf("%s completed in %s", result.JobName, result.Duration))
	return nil
}
