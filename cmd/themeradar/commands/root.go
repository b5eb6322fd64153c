package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	themesFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "themeradar",
	Short: "Theme Radar - 소셜 테마 시그널 + 예측 원장",
	Long: `Theme Radar CLI

Reddit 게시물에서 투자 테마를 탐지하고 순위를 매긴 뒤
프록시 ETF 수익률로 예측을 평가합니다.

Usage:
  go run ./cmd/themeradar [command]

Examples:
  go run ./cmd/themeradar run
  go run ./cmd/themeradar evaluate
  go run ./cmd/themeradar validate --json
  go run ./cmd/themeradar api
  go run ./cmd/themeradar scheduler
  go run ./cmd/themeradar themes list`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Ctrl+C / SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&themesFile, "themes", "", "theme config YAML (default THEMES_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
