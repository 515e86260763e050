// Package am holds dugout's configuration: typed sections loaded by viper
// from TOML files, DUGOUT_* environment variables and a project .env file.
package am

// Config represents the dugout configuration
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Match      MatchConfig      `mapstructure:"match"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Retrosheet RetrosheetConfig `mapstructure:"retrosheet"`
	FanGraphs  FanGraphsConfig  `mapstructure:"fangraphs"`
	Kaggle     KaggleConfig     `mapstructure:"kaggle"`
	Sheets     SheetsConfig     `mapstructure:"sheets"`
	Log        LogConfig        `mapstructure:"log"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MatchConfig holds defaults for the fuzzy matcher
type MatchConfig struct {
	Threshold float64 `mapstructure:"threshold"` // inclusive, 0..100
	Scorer    string  `mapstructure:"scorer"`    // see fuzzy.Methods()
	Workers   int     `mapstructure:"workers"`   // 1 = sequential
}

// HTTPConfig configures the outbound HTTP client shared by the fetchers
type HTTPConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // 0 = unlimited
	Burst             int     `mapstructure:"burst"`
	UserAgent         string  `mapstructure:"user_agent"`
	MaxBodyMB         int     `mapstructure:"max_body_mb"`
}

// RetrosheetConfig configures game log downloads
type RetrosheetConfig struct {
	IndexURL string `mapstructure:"index_url"`
	Dest     string `mapstructure:"dest"`
}

// FanGraphsConfig configures leaderboard exports
type FanGraphsConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ElementID      string `mapstructure:"element_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Presets        string `mapstructure:"presets"` // path to a presets TOML file
	Dest           string `mapstructure:"dest"`
	// Command runs browser automation for the export; empty fetches the URL directly.
	Command string `mapstructure:"command"`
}

// KaggleConfig holds Kaggle API credentials and download defaults.
// Username and Key fall back to KAGGLE_USERNAME / KAGGLE_KEY.
type KaggleConfig struct {
	Username string `mapstructure:"username"`
	Key      string `mapstructure:"key"`
	BaseURL  string `mapstructure:"base_url"`
	Dest     string `mapstructure:"dest"`
}

// SheetsConfig configures Google Sheets access
type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"` // empty = application default credentials
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// DefaultDirPermissions is used for ~/.dugout and download destinations
const DefaultDirPermissions = 0750

// ConfigFileName is the name searched for in system, user and project locations
const ConfigFileName = "dugout.toml"

// EnvPrefix is the prefix for environment overrides (DUGOUT_MATCH_THRESHOLD, ...)
const EnvPrefix = "DUGOUT"
