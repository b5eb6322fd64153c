package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/internal/validation"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "원장 통계 검증 리포트",
	Long: `전체 원장으로 적중률, 이항 검정, Rank-IC, 워크포워드, Holm 보정,
거버넌스 판정을 계산합니다.

Example:
  go run ./cmd/themeradar validate
  go run ./cmd/themeradar validate --json`,
	RunE: runValidate,
}

var validateJSON bool

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "print the report as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.store.List(ctx, contracts.PredictionFilter{})
	if err != nil {
		return fmt.Errorf("list predictions: %w", err)
	}

	report, err := validation.BuildEvaluationReport(rows, a.themes.Validation)
	if err != nil {
		return err
	}

	if validateJSON {
		return printJSON(report)
	}
	fmt.Fprint(cmd.OutOrStdout(), validation.RenderText(report))
	return nil
}
