package commands

import (
	"database/sql"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dugout/db"
	"github.com/teranos/dugout/display"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
	"github.com/teranos/dugout/fuzzy"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

// MatchCmd represents the match (fuzzy join) command
var MatchCmd = &cobra.Command{
	Use:   "match",
	Short: sym.AX + " Fuzzy join two lists of names",
	Long: sym.AX + ` match - Fuzzy join two lists of names

Pairs every distinct source value with its best scoring target value.
Pairs scoring below --threshold are reported without a match.
Each side is read from a CSV column or from the first column (or
--*-col) of a SQL query against the database.

Scorers: ratio, partial_ratio, token_sort_ratio, partial_token_sort_ratio,
token_set_ratio.

Examples:
  dugout match --source fangraphs.csv --source-col Name --target people.csv --target-col fullName
  dugout match --source-query "SELECT DISTINCT team FROM gamelogs" --target teams.csv --target-col name --threshold 80
  dugout match --source a.csv --source-col name --target b.csv --target-col name --out joined.csv`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

var (
	matchSource      string
	matchSourceCol   string
	matchSourceQuery string
	matchTarget      string
	matchTargetCol   string
	matchTargetQuery string
	matchThreshold   float64
	matchScorer      string
	matchWorkers     int
	matchOut         string
	matchTable       string
)

func init() {
	f := MatchCmd.Flags()
	f.StringVar(&matchSource, "source", "", "CSV file holding the source column")
	f.StringVar(&matchSourceCol, "source-col", "", "Source column name")
	f.StringVar(&matchSourceQuery, "source-query", "", "SQL query producing the source values")
	f.StringVar(&matchTarget, "target", "", "CSV file holding the target column")
	f.StringVar(&matchTargetCol, "target-col", "", "Target column name")
	f.StringVar(&matchTargetQuery, "target-query", "", "SQL query producing the target values")
	f.Float64Var(&matchThreshold, "threshold", 0, "Minimum score (0-100) for a match (default: match.threshold)")
	f.StringVar(&matchScorer, "scorer", "", "Scoring method (default: match.scorer)")
	f.IntVar(&matchWorkers, "workers", 0, "Parallel scoring workers (default: match.workers)")
	f.StringVar(&matchOut, "out", "", "Write the result as CSV to this file")
	f.StringVar(&matchTable, "table", "", "Write the result into this database table")
	f.StringVar(&dbPathFlag, "db", "", "Database file for --*-query and --table (default: database.path)")
	addWriteFlags(MatchCmd)

	MatchCmd.MarkFlagsMutuallyExclusive("source", "source-query")
	MatchCmd.MarkFlagsMutuallyExclusive("target", "target-query")
	MatchCmd.MarkFlagsOneRequired("source", "source-query")
	MatchCmd.MarkFlagsOneRequired("target", "target-query")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	threshold := cfg.Match.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold = matchThreshold
	}
	scorerName := cfg.Match.Scorer
	if matchScorer != "" {
		scorerName = matchScorer
	}
	method, err := fuzzy.ParseMethod(scorerName)
	if err != nil {
		return err
	}
	workers := cfg.Match.Workers
	if matchWorkers > 0 {
		workers = matchWorkers
	}

	var database *sql.DB
	if matchSourceQuery != "" || matchTargetQuery != "" || matchTable != "" {
		database, err = openDatabase(dbPathFlag)
		if err != nil {
			return err
		}
		defer database.Close()
	}

	source, err := readValues(cmd, database, matchSource, matchSourceQuery, matchSourceCol)
	if err != nil {
		return errors.Wrap(err, "read source values")
	}
	target, err := readValues(cmd, database, matchTarget, matchTargetQuery, matchTargetCol)
	if err != nil {
		return errors.Wrap(err, "read target values")
	}

	matcher, err := fuzzy.NewMatcher(threshold, method,
		fuzzy.WithWorkers(workers),
		fuzzy.WithLogger(logger.LoggerFromContext(ctx)),
		fuzzy.WithTrace(logger.TraceEnabled()),
	)
	if err != nil {
		return err
	}
	result := matcher.Match(source, target)
	out := result.Frame()

	if matchOut != "" {
		if err := writeCSVFile(matchOut, result); err != nil {
			return err
		}
	}
	if matchTable != "" {
		opts, err := writeOptions()
		if err != nil {
			return err
		}
		if err := db.WriteFrame(ctx, database, matchTable, out, opts); err != nil {
			return err
		}
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), result)
	}
	if matchOut == "" && matchTable == "" {
		if err := display.RenderFrame(cmd.OutOrStdout(), out, 0); err != nil {
			return err
		}
	}
	pterm.Info.Printf("%d of %d values matched (%s, threshold %v)\n", result.Matched(), len(result), method, threshold)
	return nil
}

// readValues returns the values of column from a CSV file, or of a query
// result (its first column when column is empty)
func readValues(cmd *cobra.Command, database *sql.DB, path, query, column string) ([]string, error) {
	var f *frame.Frame
	var err error
	if query != "" {
		f, err = db.Query(cmd.Context(), database, query)
	} else {
		if column == "" {
			return nil, errors.NewInvalidArgumentError("a column name is required with a CSV file")
		}
		// Match keys are compared as written: "007" and "7" stay distinct.
		f, err = readCSVFile(path, frame.CSVOptions{Header: true, KeepStrings: true})
	}
	if err != nil {
		return nil, err
	}

	if column == "" {
		if len(f.Columns) == 0 {
			return nil, errors.NewInvalidArgumentError("query returned no columns")
		}
		column = f.Columns[0]
	}
	return f.Strings(column)
}
