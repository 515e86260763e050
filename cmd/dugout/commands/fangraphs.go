package commands

import (
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dugout/db"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/fangraphs"
	"github.com/teranos/dugout/frame"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

// FanGraphsCmd represents the fangraphs command
var FanGraphsCmd = &cobra.Command{
	Use:   "fangraphs",
	Short: sym.IX + " Export FanGraphs leaderboards",
	Long: sym.IX + ` fangraphs - Export FanGraphs leaderboards

Builds the leaderboard URL from the default batting parameters, a named
preset (fangraphs.presets) and --season, triggers the CSV export and waits
for the file to land in --dest.

The live page only exports through its button. Set fangraphs.command to a
browser automation script; {url}, {element} and {dir} in it are replaced
before it runs. Without a command the URL is fetched directly and must
answer with CSV.

Examples:
  dugout fangraphs export --season 2023 --name batting_2023.csv
  dugout fangraphs export --preset pitching --season 2022 --load-table pitching`,
}

var fangraphsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one leaderboard as CSV",
	Args:  cobra.NoArgs,
	RunE:  runFanGraphsExport,
}

var (
	fgPreset    string
	fgSeason    int
	fgDest      string
	fgName      string
	fgLoadTable string
)

func init() {
	f := fangraphsExportCmd.Flags()
	f.StringVar(&fgPreset, "preset", "", "Named parameter preset from the presets file")
	f.IntVar(&fgSeason, "season", 0, "Season (default: the preset's, else 2022)")
	f.StringVar(&fgDest, "dest", "", "Destination directory (default: fangraphs.dest)")
	f.StringVar(&fgName, "name", "", "Rename the export to this file name")
	f.StringVar(&fgLoadTable, "load-table", "", "Load the export into this table")
	f.StringVar(&dbPathFlag, "db", "", "Database file for --load-table (default: database.path)")
	addWriteFlags(fangraphsExportCmd)

	FanGraphsCmd.AddCommand(fangraphsExportCmd)
}

func runFanGraphsExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	params := fangraphs.DefaultBattingParams()
	if fgPreset != "" {
		if cfg.FanGraphs.Presets == "" {
			return errors.WithHint(
				errors.NewInvalidArgumentError("--preset %q given but no presets file is configured", fgPreset),
				"dugout am set fangraphs.presets <path>",
			)
		}
		presets, err := fangraphs.LoadPresets(cfg.FanGraphs.Presets)
		if err != nil {
			return err
		}
		p, ok := presets[fgPreset]
		if !ok {
			names := make([]string, 0, len(presets))
			for name := range presets {
				names = append(names, name)
			}
			sort.Strings(names)
			return errors.WithHintf(
				errors.NewNotFoundError("preset %q not in %s", fgPreset, cfg.FanGraphs.Presets),
				"available presets: %s", strings.Join(names, ", "),
			)
		}
		params = p
	}
	if fgSeason != 0 {
		params = params.WithSeason(fgSeason)
	}

	dest := fgDest
	if dest == "" {
		dest = cfg.FanGraphs.Dest
	}

	var trigger fangraphs.Trigger = &fangraphs.DirectExport{Client: newHTTPClient(cfg.HTTP)}
	if cfg.FanGraphs.Command != "" {
		trigger = &fangraphs.CommandTrigger{Command: cfg.FanGraphs.Command}
	}
	downloader := fangraphs.NewDownloader(trigger, logger.LoggerFromContext(ctx).Named("fangraphs"))
	downloader.BaseURL = cfg.FanGraphs.BaseURL
	downloader.ElementID = cfg.FanGraphs.ElementID
	if cfg.FanGraphs.TimeoutSeconds > 0 {
		downloader.Timeout = time.Duration(cfg.FanGraphs.TimeoutSeconds) * time.Second
	}

	path, err := downloader.Download(ctx, params, dest, fgName)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Leaderboard saved to %s\n", path)
	if fgLoadTable == "" {
		return nil
	}

	opts, err := writeOptions()
	if err != nil {
		return err
	}
	f, err := readCSVFile(path, frame.CSVOptions{Header: true})
	if err != nil {
		return err
	}
	database, err := openDatabase(dbPathFlag)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.WriteFrame(ctx, database, fgLoadTable, f, opts); err != nil {
		return err
	}
	recordIngest(ctx, database, "fangraphs", downloader.BaseURL, path, f.Len())
	pterm.Success.Printf("%d rows loaded into %s\n", f.Len(), fgLoadTable)
	return nil
}
