package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/dugout/cmd/dugout/commands"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

var rootCmd = &cobra.Command{
	Use:   "dugout",
	Short: "dugout - baseball data plumbing",
	Long: `dugout - fetch, reshape and join baseball data.

Downloads Retrosheet game logs, FanGraphs leaderboards and Kaggle datasets,
moves tables between CSV, SQLite and Google Sheets, and joins name lists
that do not agree on spelling.

Available commands:
  ` + sym.AM + ` am         - Show and edit configuration
  ` + sym.IX + ` retrosheet - Download Retrosheet game logs
  ` + sym.IX + ` fangraphs  - Export FanGraphs leaderboards
  ` + sym.IX + ` kaggle     - Download Kaggle dataset and competition files
  ` + sym.DB + ` db         - Read and write SQLite tables
  ` + sym.AX + ` match      - Fuzzy join two lists of names
  ` + sym.SO + ` sheet      - Push and pull Google Sheets

Examples:
  dugout retrosheet fetch --year 2022 --load-table gamelogs
  dugout match --source teams.csv --source-col name --target-query "SELECT team FROM gamelogs"
  dugout db query "SELECT * FROM ingest_log"`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: commands.Setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.MatchCmd)
	rootCmd.AddCommand(commands.RetrosheetCmd)
	rootCmd.AddCommand(commands.FanGraphsCmd)
	rootCmd.AddCommand(commands.KaggleCmd)
	rootCmd.AddCommand(commands.SheetCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Errorw("Command failed", logger.FieldError, err)
		logger.Cleanup()
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
