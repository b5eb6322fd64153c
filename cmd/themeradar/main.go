package main

import (
	"os"

	"github.com/wonny/themeradar/cmd/themeradar/commands"
)

// main is the entry point for the themeradar CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/themeradar [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
