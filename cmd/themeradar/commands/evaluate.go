package commands

import (
	"github.com/spf13/cobra"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "만기 도래 예측 평가",
	Long: `target_date가 지난 미평가 예측을 프록시 ETF 종가로 평가합니다.
파이프라인 락을 획득한 상태에서만 실행됩니다.

Example:
  go run ./cmd/themeradar evaluate`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.service.EvaluatePending(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "PREDICTION EVALUATION")
	printEvaluationSummary(out, summary)
	printSuccess(out, "evaluation completed")
	return nil
}
