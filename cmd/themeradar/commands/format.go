package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wonny/themeradar/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// printHeader prints a titled block
func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// printRunSummary writes the outcome of one pipeline run
func printRunSummary(w io.Writer, s *contracts.RunSummary) {
	printHeader(w, "THEME RADAR RUN")
	fmt.Fprintf(w, "  Run ID      : %s\n", s.RunID)
	fmt.Fprintf(w, "  Signal date : %s\n", s.SignalDate)
	fmt.Fprintf(w, "  Documents   : %d\n", s.Docs)
	fmt.Fprintf(w, "  Ranked      : %d\n", s.RankedThemes)
	fmt.Fprintf(w, "  Stored      : %d\n", s.StoredPredictions)
	fmt.Fprintf(w, "  Stages      : %s\n", strings.Join(s.CompletedStages, " → "))
	if s.ReportPath != "" {
		fmt.Fprintf(w, "  Report      : %s\n", s.ReportPath)
	}
	fmt.Fprintln(w, singleLine)
	printEvaluationSummary(w, s.Evaluation)
}

func printEvaluationSummary(w io.Writer, e contracts.EvaluationSummary) {
	fmt.Fprintf(w, "  Evaluated %d  hits %d  unresolved %d  deferred %d  errors %d\n",
		e.Evaluated, e.Hits, e.Unresolved, e.Deferred, e.Errors)
}

// printJSON writes v as indented JSON to stdout
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
