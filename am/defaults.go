package am

import (
	"github.com/spf13/viper"
)

// Default values shared with the packages that consume them
const (
	DefaultDatabasePath   = "dugout.db"
	DefaultMatchThreshold = 70.0
	DefaultMatchScorer    = "token_sort_ratio"

	DefaultRetrosheetIndexURL = "https://www.retrosheet.org/gamelogs/index.html"
	DefaultFanGraphsBaseURL   = "https://www.fangraphs.com/leaders.aspx"
	DefaultFanGraphsElementID = "LeaderBoard1_cmdCSV"
	DefaultKaggleBaseURL      = "https://www.kaggle.com/api/v1"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("match.threshold", DefaultMatchThreshold)
	v.SetDefault("match.scorer", DefaultMatchScorer)
	v.SetDefault("match.workers", 1)

	v.SetDefault("http.timeout_seconds", 60)
	v.SetDefault("http.requests_per_second", 2.0) // polite default for public sites
	v.SetDefault("http.burst", 4)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.max_body_mb", 512)

	v.SetDefault("retrosheet.index_url", DefaultRetrosheetIndexURL)
	v.SetDefault("retrosheet.dest", "data/retrosheet")

	v.SetDefault("fangraphs.base_url", DefaultFanGraphsBaseURL)
	v.SetDefault("fangraphs.element_id", DefaultFanGraphsElementID)
	v.SetDefault("fangraphs.timeout_seconds", 30)
	v.SetDefault("fangraphs.presets", "")
	v.SetDefault("fangraphs.dest", "data/fangraphs")
	v.SetDefault("fangraphs.command", "")

	v.SetDefault("kaggle.username", "")
	v.SetDefault("kaggle.key", "")
	v.SetDefault("kaggle.base_url", DefaultKaggleBaseURL)
	v.SetDefault("kaggle.dest", "data/kaggle")

	v.SetDefault("sheets.credentials_file", "")

	v.SetDefault("log.json", false)
}

// sensitiveEnvVars maps config keys to the conventional variables of the
// upstream tools, so existing Kaggle and Google setups work unchanged.
var sensitiveEnvVars = map[string]string{
	"kaggle.username":         "KAGGLE_USERNAME",
	"kaggle.key":              "KAGGLE_KEY",
	"sheets.credentials_file": "GOOGLE_APPLICATION_CREDENTIALS",
}

// BindSensitiveEnvVars explicitly binds credentials to environment variables.
// The DUGOUT_* form takes precedence over the conventional name.
func BindSensitiveEnvVars(v *viper.Viper) {
	for key, env := range sensitiveEnvVars {
		_ = v.BindEnv(key, prefixedEnv(key), env)
	}
}
