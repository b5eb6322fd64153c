package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/themeradar/internal/api"
	"github.com/wonny/themeradar/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                   - Health check
  POST /api/pipeline/run         - 파이프라인 실행 (409 락 충돌, 422 전제조건 실패)
  POST /api/predictions/evaluate - 만기 예측 평가
  GET  /api/reports/latest       - 최신 리포트 (?format=text)
  GET  /api/predictions          - 원장 조회 (timing, confidence, from, to, evaluated, limit)
  GET  /api/evaluation           - 검증 리포트 (?format=text)
  GET  /ws/runs                  - 실행 단계 이벤트 스트림 (websocket)

Example:
  go run ./cmd/themeradar api
  go run ./cmd/themeradar api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	router := api.NewRouter(
		handlers.NewPipelineHandler(a.service, a.log.Component("api")),
		handlers.NewReportHandler(a.reports, a.store, a.themes.Validation, a.log.Component("api")),
		a.hub,
		a.log,
	)
	server := api.New(":"+a.cfg.Port, router, a.log)

	out := cmd.OutOrStdout()
	ready := make(chan string, 1)
	go func() {
		if addr, ok := <-ready; ok {
			printSuccess(out, fmt.Sprintf("Server running on http://%s", addr))
			fmt.Fprintln(out, "Press Ctrl+C to stop")
		}
	}()

	err = server.Run(ctx, ready)
	close(ready)
	if err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}
