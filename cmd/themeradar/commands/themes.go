package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/themeradar/internal/themeconfig"
)

// themesCmd represents the themes command
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "테마 설정 조회",
	Long: `테마 YAML을 검증하고 내용을 출력합니다.

Subcommands:
  list  - 테마 목록
  hash  - 설정 해시 (리포트의 config_hash)`,
}

var (
	themesListCmd = &cobra.Command{
		Use:   "list",
		Short: "테마 목록",
		RunE:  listThemes,
	}

	themesHashCmd = &cobra.Command{
		Use:   "hash",
		Short: "설정 해시 출력",
		RunE:  printThemesHash,
	}
)

func init() {
	rootCmd.AddCommand(themesCmd)
	themesCmd.AddCommand(themesListCmd)
	themesCmd.AddCommand(themesHashCmd)
}

// loadThemes reads the YAML named by --themes without touching the environment;
// otherwise it goes through the full config load
func loadThemes() (*themeconfig.Config, string, error) {
	if themesFile == "" {
		_, _, themes, hash, err := loadBase()
		return themes, hash, err
	}

	themes, _, err := themeconfig.Load(themesFile)
	if err != nil {
		return nil, "", err
	}
	hash, err := themeconfig.Hash(themes)
	if err != nil {
		return nil, "", fmt.Errorf("hash theme config: %w", err)
	}
	return themes, hash, nil
}

func listThemes(cmd *cobra.Command, args []string) error {
	themes, hash, err := loadThemes()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range themeconfig.CheckWarnings(themes) {
		printWarning(out, fmt.Sprintf("%s: %s", w.Code, w.Message))
	}
	printHeader(out, fmt.Sprintf("THEMES  %s v%s", themes.Meta.ConfigID, themes.Meta.Version))
	fmt.Fprintf(out, "  %-16s %-28s %-6s %s\n", "ID", "NAME", "ETF", "KEYWORDS")
	for _, t := range themes.Themes {
		etf := t.ProxyETF
		if etf == "" {
			etf = "-"
		}
		fmt.Fprintf(out, "  %-16s %-28s %-6s %s\n", t.ThemeID, t.DisplayName, etf, strings.Join(t.Keywords, ", "))
	}
	fmt.Fprintln(out, singleLine)
	fmt.Fprintf(out, "  %d themes  config_hash %s\n", len(themes.Themes), hash)
	return nil
}

func printThemesHash(cmd *cobra.Command, args []string) error {
	_, hash, err := loadThemes()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
