package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dugout/db"
	"github.com/teranos/dugout/frame"
	"github.com/teranos/dugout/gsheet"
	"github.com/teranos/dugout/sym"
)

// SheetCmd represents the sheet (Google Sheets) command
var SheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: sym.SO + " Push and pull Google Sheets",
	Long: sym.SO + ` sheet - Push and pull Google Sheets

Authenticates with sheets.credentials_file (or GOOGLE_APPLICATION_CREDENTIALS),
falling back to application default credentials.

Examples:
  dugout sheet push leaders.csv --title "2023 Leaders"
  dugout sheet pull "2023 Leaders" --sheet Pitching --out pitching.csv
  dugout sheet pull "Draft Board" --table draft`,
}

var sheetPushCmd = &cobra.Command{
	Use:   "push <file.csv>",
	Short: "Create a spreadsheet from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetPush,
}

var sheetPullCmd = &cobra.Command{
	Use:   "pull <title>",
	Short: "Read a spreadsheet into CSV, a table or the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetPull,
}

var (
	sheetTitle string
	sheetName  string
	sheetOut   string
	sheetTable string
)

func init() {
	sheetPushCmd.Flags().StringVar(&sheetTitle, "title", "DFSheet", "Spreadsheet title")

	sheetPullCmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet name (default: the first sheet)")
	sheetPullCmd.Flags().StringVar(&sheetOut, "out", "", "Write the sheet as CSV to this file")
	sheetPullCmd.Flags().StringVar(&sheetTable, "table", "", "Write the sheet into this database table")
	sheetPullCmd.Flags().StringVar(&dbPathFlag, "db", "", "Database file for --table (default: database.path)")
	addWriteFlags(sheetPullCmd)

	SheetCmd.AddCommand(sheetPushCmd)
	SheetCmd.AddCommand(sheetPullCmd)
}

func runSheetPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := readCSVFile(args[0], frame.CSVOptions{Header: true})
	if err != nil {
		return err
	}

	client, err := gsheet.NewClient(cmd.Context(), cfg.Sheets)
	if err != nil {
		return err
	}
	id, err := client.FrameToSheet(cmd.Context(), f, sheetTitle)
	if err != nil {
		return err
	}
	pterm.Success.Printf("%d rows written to %q (https://docs.google.com/spreadsheets/d/%s)\n", f.Len(), sheetTitle, id)
	return nil
}

func runSheetPull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	client, err := gsheet.NewClient(ctx, cfg.Sheets)
	if err != nil {
		return err
	}
	f, err := client.SheetToFrame(ctx, args[0], sheetName)
	if err != nil {
		return err
	}

	if sheetOut != "" {
		if err := writeCSVFile(sheetOut, f); err != nil {
			return err
		}
		pterm.Success.Printf("%d rows written to %s\n", f.Len(), sheetOut)
	}
	if sheetTable != "" {
		opts, err := writeOptions()
		if err != nil {
			return err
		}
		database, err := openDatabase(dbPathFlag)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.WriteFrame(ctx, database, sheetTable, f, opts); err != nil {
			return err
		}
		recordIngest(ctx, database, "sheet", args[0], sheetOut, f.Len())
		pterm.Success.Printf("%d rows loaded into %s\n", f.Len(), sheetTable)
	}
	if sheetOut == "" && sheetTable == "" {
		return printFrame(cmd, f, 50)
	}
	return nil
}
