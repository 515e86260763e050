package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dugout/display"
	"github.com/teranos/dugout/kaggle"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

// KaggleCmd represents the kaggle command
var KaggleCmd = &cobra.Command{
	Use:   "kaggle",
	Short: sym.IX + " Download Kaggle dataset and competition files",
	Long: sym.IX + ` kaggle - Download Kaggle dataset and competition files

Credentials come from [kaggle] in dugout.toml, KAGGLE_USERNAME/KAGGLE_KEY
(environment or project .env), or ~/.kaggle/kaggle.json.
Files already present in --dest are downloaded again; --force=false keeps them.

Examples:
  dugout kaggle dataset seanlahman/the-history-of-baseball batting.csv player.csv
  dugout kaggle competition mlb-player-digital-engagement-forecasting players.csv --force=false`,
}

var kaggleDatasetCmd = &cobra.Command{
	Use:   "dataset <owner/slug> <file>...",
	Short: "Download files from a dataset",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKaggle(cmd, args, (*kaggle.Client).DownloadDatasetFiles)
	},
}

var kaggleCompetitionCmd = &cobra.Command{
	Use:   "competition <name> <file>...",
	Short: "Download files from a competition",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKaggle(cmd, args, (*kaggle.Client).DownloadCompetitionFiles)
	},
}

var (
	kaggleDest  string
	kaggleForce bool
)

func init() {
	KaggleCmd.PersistentFlags().StringVar(&kaggleDest, "dest", "", "Destination directory (default: kaggle.dest)")
	KaggleCmd.PersistentFlags().BoolVar(&kaggleForce, "force", true, "Download even if the file exists")

	KaggleCmd.AddCommand(kaggleDatasetCmd)
	KaggleCmd.AddCommand(kaggleCompetitionCmd)
}

type kaggleDownload func(c *kaggle.Client, ctx context.Context, ref string, files []string, dir string, force bool) ([]kaggle.File, error)

func runKaggle(cmd *cobra.Command, args []string, download kaggleDownload) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	creds, err := kaggle.ResolveCredentials(cfg.Kaggle)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	client, err := kaggle.NewClient(creds, newHTTPClient(cfg.HTTP), cfg.Kaggle.BaseURL,
		logger.LoggerFromContext(ctx).Named("kaggle"))
	if err != nil {
		return err
	}

	dest := kaggleDest
	if dest == "" {
		dest = cfg.Kaggle.Dest
	}
	files, err := download(client, ctx, args[0], args[1:], dest, kaggleForce)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), files)
	}
	for _, f := range files {
		if f.Skipped {
			pterm.Info.Printf("%s already present, kept (--force=false)\n", f.Name)
			continue
		}
		for _, p := range f.Paths {
			pterm.Success.Printf("%s downloaded to %s\n", f.Name, p)
		}
	}
	return nil
}
