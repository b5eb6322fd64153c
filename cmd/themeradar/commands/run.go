package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/themeradar/internal/contracts"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "파이프라인 1회 실행",
	Long: `S0 문서 수집부터 S4 원장 기록까지 한 번 실행합니다.

순서:
  S0 문서 → S1 지표 → S2 점수 → S3 분류/순위 → 리포트 저장
  → S5 만기 예측 평가 → S4 예측 기록

Example:
  go run ./cmd/themeradar run
  go run ./cmd/themeradar run --print-report`,
	RunE: runPipeline,
}

var printReport bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&printReport, "print-report", false, "print the text report after the run")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	summary, err := a.service.RunPipeline(ctx)
	if err != nil {
		if errors.Is(err, contracts.ErrLockConflict) {
			printWarning(out, "another run holds the pipeline lock")
		}
		if summary != nil {
			printRunSummary(out, summary)
		}
		return err
	}

	printRunSummary(out, summary)

	if printReport {
		text, err := a.reports.LatestText(ctx)
		if err != nil {
			return fmt.Errorf("read report: %w", err)
		}
		fmt.Fprint(out, text)
	}

	printSuccess(out, "run completed")
	return nil
}
