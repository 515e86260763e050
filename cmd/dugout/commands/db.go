package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dugout/db"
	"github.com/teranos/dugout/display"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
	"github.com/teranos/dugout/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Read and write SQLite tables",
	Long: sym.DB + ` db - Read and write SQLite tables

All subcommands use the configured database (database.path) unless --db is given.

Examples:
  dugout db tables
  dugout db query "SELECT name, hr FROM batting WHERE hr > 40"
  dugout db load batting.csv batting --if-exists append
  dugout db create teams name:TEXT wins:INTEGER
  dugout db insert teams name=Yankees wins=99
  dugout db delete teams --where "wins < 60"
  dugout db drop teams
  dugout db history`,
}

var dbQueryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a query and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbQuery,
}

var dbTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables",
	Args:  cobra.NoArgs,
	RunE:  runDbTables,
}

var dbCreateCmd = &cobra.Command{
	Use:   "create <table> <column:type>...",
	Short: "Create a table if it does not exist",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDbCreate,
}

var dbDropCmd = &cobra.Command{
	Use:   "drop <table>",
	Short: "Drop a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbDrop,
}

var dbInsertCmd = &cobra.Command{
	Use:   "insert <table> <column=value>...",
	Short: "Insert one row",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDbInsert,
}

var dbDeleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete rows matching --where",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbDelete,
}

var dbLoadCmd = &cobra.Command{
	Use:   "load <file.csv> <table>",
	Short: "Load a CSV file into a table",
	Args:  cobra.ExactArgs(2),
	RunE:  runDbLoad,
}

var dbHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent loads recorded in ingest_log",
	Args:  cobra.NoArgs,
	RunE:  runDbHistory,
}

var (
	dbPathFlag     string
	queryLimitFlag int
	deleteWhere    string
	loadIfExists   string
	loadIndex      bool
	loadChunkSize  int
	historyLimit   int
)

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Database file (default: database.path)")

	dbQueryCmd.Flags().IntVar(&queryLimitFlag, "limit", 50, "Maximum rows to print in table output (0 = all)")
	dbDeleteCmd.Flags().StringVar(&deleteWhere, "where", "", `SQL condition selecting rows to delete ("1=1" for all)`)
	_ = dbDeleteCmd.MarkFlagRequired("where")
	addWriteFlags(dbLoadCmd)
	dbHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries to show (0 = all)")

	DbCmd.AddCommand(dbQueryCmd)
	DbCmd.AddCommand(dbTablesCmd)
	DbCmd.AddCommand(dbCreateCmd)
	DbCmd.AddCommand(dbDropCmd)
	DbCmd.AddCommand(dbInsertCmd)
	DbCmd.AddCommand(dbDeleteCmd)
	DbCmd.AddCommand(dbLoadCmd)
	DbCmd.AddCommand(dbHistoryCmd)
}

// addWriteFlags registers the flags shared by commands that write frames
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&loadIfExists, "if-exists", string(db.IfExistsReplace), "When the table exists: fail, replace or append")
	cmd.Flags().BoolVar(&loadIndex, "index", false, "Also write the row labels as a column")
	cmd.Flags().IntVar(&loadChunkSize, "chunk-size", db.DefaultChunkSize, "Rows per transaction")
}

func writeOptions() (db.WriteOptions, error) {
	mode := db.IfExists(strings.ToLower(loadIfExists))
	switch mode {
	case db.IfExistsFail, db.IfExistsReplace, db.IfExistsAppend:
	default:
		return db.WriteOptions{}, errors.NewInvalidArgumentError("--if-exists must be fail, replace or append, got %q", loadIfExists)
	}
	return db.WriteOptions{IfExists: mode, Index: loadIndex, ChunkSize: loadChunkSize}, nil
}

func runDbQuery(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	f, err := db.Query(cmd.Context(), database, args[0])
	if err != nil {
		return err
	}
	return printFrame(cmd, f, queryLimitFlag)
}

func runDbTables(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	tables, err := db.Tables(cmd.Context(), database)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), tables)
	}
	for _, t := range tables {
		fmt.Fprintln(cmd.OutOrStdout(), t)
	}
	return nil
}

func runDbCreate(cmd *cobra.Command, args []string) error {
	columns := make([]db.Column, 0, len(args)-1)
	for _, def := range args[1:] {
		name, typ, ok := strings.Cut(def, ":")
		if !ok || name == "" || typ == "" {
			return errors.NewInvalidArgumentError("column %q must be name:TYPE", def)
		}
		columns = append(columns, db.Column{Name: name, Type: typ})
	}

	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.CreateTable(cmd.Context(), database, args[0], columns); err != nil {
		return err
	}
	pterm.Success.Printf("Table %s ready\n", args[0])
	return nil
}

func runDbDrop(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.DropTable(cmd.Context(), database, args[0]); err != nil {
		return err
	}
	pterm.Success.Printf("Table %s dropped\n", args[0])
	return nil
}

func runDbInsert(cmd *cobra.Command, args []string) error {
	columns := make([]string, 0, len(args)-1)
	values := make([]any, 0, len(args)-1)
	for _, pair := range args[1:] {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return errors.NewInvalidArgumentError("value %q must be column=value", pair)
		}
		columns = append(columns, name)
		values = append(values, value)
	}

	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.InsertRow(cmd.Context(), database, args[0], columns, values); err != nil {
		return err
	}
	pterm.Success.Printf("1 row inserted into %s\n", args[0])
	return nil
}

func runDbDelete(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := db.DeleteRows(cmd.Context(), database, args[0], deleteWhere)
	if err != nil {
		return err
	}
	pterm.Success.Printf("%d rows deleted from %s\n", n, args[0])
	return nil
}

func runDbLoad(cmd *cobra.Command, args []string) error {
	opts, err := writeOptions()
	if err != nil {
		return err
	}
	f, err := readCSVFile(args[0], frame.CSVOptions{Header: true})
	if err != nil {
		return err
	}

	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	if err := db.WriteFrame(ctx, database, args[1], f, opts); err != nil {
		return err
	}
	recordIngest(ctx, database, "csv", args[0], args[0], f.Len())
	pterm.Success.Printf("%d rows loaded into %s\n", f.Len(), args[1])
	return nil
}

func runDbHistory(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := db.IngestHistory(cmd.Context(), database, historyLimit)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Source,
			e.Target,
			e.Path,
			fmt.Sprint(e.Rows),
		})
	}
	return display.RenderTable(cmd.OutOrStdout(), []string{"when", "source", "target", "path", "rows"}, rows)
}

// printFrame writes f as JSON or as a table, depending on --json
func printFrame(cmd *cobra.Command, f *frame.Frame, limit int) error {
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), display.NewFrameJSON(f))
	}
	return display.RenderFrame(cmd.OutOrStdout(), f, limit)
}
