package commands

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dugout/db"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/retrosheet"
	"github.com/teranos/dugout/sym"
)

// RetrosheetCmd represents the retrosheet command
var RetrosheetCmd = &cobra.Command{
	Use:   "retrosheet",
	Short: sym.IX + " Download Retrosheet game logs",
	Long: sym.IX + ` retrosheet - Download Retrosheet game logs

Finds the yearly game log archive on the Retrosheet index page, downloads
and unzips it, and optionally loads the logs into a database table.

Examples:
  dugout retrosheet fetch --year 2022
  dugout retrosheet fetch --year 2021 --dest data/gl --load-table gamelogs --if-exists append`,
}

var retrosheetFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and extract one season of game logs",
	Args:  cobra.NoArgs,
	RunE:  runRetrosheetFetch,
}

var (
	retroYear      int
	retroDest      string
	retroLoadTable string
)

func init() {
	retrosheetFetchCmd.Flags().IntVar(&retroYear, "year", 0, "Season to download")
	retrosheetFetchCmd.Flags().StringVar(&retroDest, "dest", "", "Destination directory (default: retrosheet.dest)")
	retrosheetFetchCmd.Flags().StringVar(&retroLoadTable, "load-table", "", "Load the game logs into this table")
	retrosheetFetchCmd.Flags().StringVar(&dbPathFlag, "db", "", "Database file for --load-table (default: database.path)")
	addWriteFlags(retrosheetFetchCmd)
	_ = retrosheetFetchCmd.MarkFlagRequired("year")

	RetrosheetCmd.AddCommand(retrosheetFetchCmd)
}

func runRetrosheetFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	dest := retroDest
	if dest == "" {
		dest = cfg.Retrosheet.Dest
	}

	fetcher := retrosheet.NewFetcher(newHTTPClient(cfg.HTTP), cfg.Retrosheet.IndexURL,
		logger.LoggerFromContext(ctx).Named("retrosheet"))
	files, err := fetcher.Download(ctx, retroYear, dest)
	if err != nil {
		return err
	}
	for _, f := range files {
		pterm.Success.Printf("Extracted %s\n", f)
	}
	if retroLoadTable == "" {
		return nil
	}

	opts, err := writeOptions()
	if err != nil {
		return err
	}
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	first := true
	for _, path := range files {
		if !strings.EqualFold(filepath.Ext(path), ".txt") {
			continue
		}
		rows, err := loadGameLogFile(cmd, database, path, opts, first)
		if err != nil {
			return err
		}
		first = false
		recordIngest(ctx, database, "retrosheet", fetcher.IndexURL, path, rows)
		pterm.Success.Printf("%d games from %s loaded into %s\n", rows, path, retroLoadTable)
	}
	if first {
		return errors.NewNotFoundError("archive for %d held no game log .txt file", retroYear)
	}
	return nil
}

// loadGameLogFile parses one game log file and writes it. Files after the
// first always append so a multi-file archive ends up in one table.
func loadGameLogFile(cmd *cobra.Command, database *sql.DB, path string, opts db.WriteOptions, first bool) (int, error) {
	in, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer in.Close()

	f, err := retrosheet.ParseGameLogs(in)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", path)
	}
	if !first {
		opts.IfExists = db.IfExistsAppend
	}
	if err := db.WriteFrame(cmd.Context(), database, retroLoadTable, f, opts); err != nil {
		return 0, err
	}
	return f.Len(), nil
}
