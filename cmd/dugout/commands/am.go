package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/dugout/am"
	"github.com/teranos/dugout/display"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Show and edit dugout configuration",
	Long: sym.AM + ` am - Show and edit dugout configuration

Configuration sources (later overrides earlier):
1. Default values
2. System config (/etc/dugout/dugout.toml)
3. User config (~/.dugout/dugout.toml)
4. Project config (dugout.toml, searched up from the working directory)
5. Project .env (credentials and DUGOUT_* values not set otherwise)
6. Environment variables (DUGOUT_*, KAGGLE_USERNAME, KAGGLE_KEY,
   GOOGLE_APPLICATION_CREDENTIALS)

Examples:
  dugout am show                       # Show current configuration
  dugout am show --format yaml         # Show configuration as YAML
  dugout am get match.threshold        # Get a specific value
  dugout am set match.scorer ratio     # Write to ~/.dugout/dugout.toml
  dugout am where                      # Show where each value comes from`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective configuration merged from all sources. Credentials are masked.",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a configuration value using dot notation (e.g., database.path, match.threshold)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Write a value into the user config (~/.dugout/dugout.toml), or the project
config with --project. Up to three backups of the previous file are kept.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long:  "List every setting with the source that supplied its value.",
	RunE:  runAmWhere,
}

var (
	configFormat string
	setProject   bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amSetCmd.Flags().BoolVar(&setProject, "project", false, "Write to ./dugout.toml instead of the user config")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	if _, err := am.LoadWithViper(am.GetViper()); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	settings := am.RedactedSettings()
	out := cmd.OutOrStdout()

	format := configFormat
	if display.ShouldOutputJSON(cmd) {
		format = "json"
	}

	switch format {
	case "json":
		return display.OutputJSON(out, settings)

	case "yaml":
		data, err := yaml.Marshal(settings)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# dugout configuration\n%s", data)

	case "toml":
		data, err := toml.Marshal(settings)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# dugout configuration\n%s", data)

	default:
		return errors.NewInvalidArgumentError("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !am.IsKnownKey(key) {
		return errors.NewNotFoundError("configuration key %q not found", key)
	}

	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to read configuration")
	}
	setting, _ := intro.Lookup(key)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), setting)
	}
	fmt.Fprintln(cmd.OutOrStdout(), setting.Value)
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path := am.UserConfigPath()
	if setProject {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get working directory")
		}
		path = filepath.Join(wd, am.ConfigFileName)
	}
	if path == "" {
		return errors.New("could not determine home directory")
	}

	if err := am.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	am.Reset()
	pterm.Success.Printf("%s = %s written to %s\n", args[0], args[1], path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), intro)
	}

	settings := append([]am.SettingInfo(nil), intro.Settings...)
	sort.SliceStable(settings, func(i, j int) bool {
		return sourceRank(settings[i].Source) < sourceRank(settings[j].Source)
	})

	rows := make([][]string, 0, len(settings))
	for _, s := range settings {
		rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}
	return display.RenderTable(cmd.OutOrStdout(), []string{"key", "value", "source", "from"}, rows)
}

func sourceRank(s am.ConfigSource) int {
	order := []am.ConfigSource{
		am.SourceDefault,
		am.SourceSystem,
		am.SourceUser,
		am.SourceProject,
		am.SourceDotEnv,
		am.SourceEnvironment,
	}
	for i, o := range order {
		if o == s {
			return i
		}
	}
	return len(order)
}
