package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranos/dugout/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// ConfigSources records where each loaded setting came from, keyed by its
// dotted name. It is rebuilt every time the global viper instance is.
var ConfigSources = map[string]SourceInfo{}

// Load reads and validates the dugout configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Defaults only, no environment for an explicit file
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer())
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	// system -> user -> project, then .env fills what is still unset
	sources := make(map[string]SourceInfo)
	projectConfig := findProjectConfig()
	mergeConfigFiles(v, configLayers(projectConfig), sources)

	envDir, _ := os.Getwd()
	if projectConfig != "" {
		envDir = filepath.Dir(projectConfig)
	}
	applyDotEnv(v, filepath.Join(envDir, ".env"), sources)

	ConfigSources = sources
	viperInstance = v
	return v
}

// configLayer is one config file candidate with the source it represents
type configLayer struct {
	source ConfigSource
	path   string
}

// configLayers lists config file candidates in precedence order (lowest first)
func configLayers(projectConfig string) []configLayer {
	layers := []configLayer{
		{source: SourceSystem, path: filepath.Join("/etc/dugout", ConfigFileName)},
	}
	if dir := UserConfigDir(); dir != "" {
		layers = append(layers, configLayer{source: SourceUser, path: filepath.Join(dir, ConfigFileName)})
	}
	if projectConfig != "" {
		layers = append(layers, configLayer{source: SourceProject, path: projectConfig})
	}
	return layers
}

// UserConfigDir returns ~/.dugout, or empty when the home directory is unknown
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dugout")
}

// findProjectConfig searches for dugout.toml by walking up the directory tree.
// Returns the path to the first file found, or empty string if none found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFrom(dir)
}

func findConfigFrom(dir string) string {
	for {
		path := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles merges existing config files into v in the given order and
// records which layer supplied each key. Unreadable files are skipped.
func mergeConfigFiles(v *viper.Viper, layers []configLayer, sources map[string]SourceInfo) {
	for _, layer := range layers {
		if _, err := os.Stat(layer.path); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(layer.path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}

		// Merge into the config layer so environment variables still win
		if err := v.MergeConfigMap(tempViper.AllSettings()); err != nil {
			continue
		}
		markSettingsFromSource(tempViper.AllSettings(), "", layer.source, layer.path, sources)
	}
}

// markSettingsFromSource flattens nested settings into dotted keys and
// attributes each to the given source
func markSettingsFromSource(settings map[string]interface{}, prefix string, source ConfigSource, path string, sources map[string]SourceInfo) {
	for key, value := range settings {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]interface{}); ok {
			markSettingsFromSource(nested, fullKey, source, path, sources)
			continue
		}
		sources[fullKey] = SourceInfo{Source: source, Path: path}
	}
}

// applyDotEnv reads a .env file without touching the process environment.
// Variables already present in the environment win. Credential variables
// only fill settings that are still empty after the config files.
func applyDotEnv(v *viper.Viper, path string, sources map[string]SourceInfo) {
	values, err := godotenv.Read(path)
	if err != nil {
		return
	}

	for key, env := range sensitiveEnvVars {
		if v.GetString(key) != "" {
			continue
		}
		for _, name := range []string{prefixedEnv(key), env} {
			if val, ok := values[name]; ok && val != "" {
				v.Set(key, val)
				sources[key] = SourceInfo{Source: SourceDotEnv, Path: path + ":" + name}
				break
			}
		}
	}

	known := make(map[string]bool)
	for _, key := range v.AllKeys() {
		known[key] = true
	}
	for name, val := range values {
		if !strings.HasPrefix(name, EnvPrefix+"_") {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		key := envToKey(name)
		if !known[key] {
			continue
		}
		if _, sensitive := sensitiveEnvVars[key]; sensitive {
			continue
		}
		v.Set(key, val)
		sources[key] = SourceInfo{Source: SourceDotEnv, Path: path + ":" + name}
	}
}

func envReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// prefixedEnv maps a dotted key to its DUGOUT_* variable name
func prefixedEnv(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// envToKey maps DUGOUT_SECTION_NAME back to section.name. Only the first
// underscore after the prefix separates section from field.
func envToKey(name string) string {
	rest := strings.ToLower(strings.TrimPrefix(name, EnvPrefix+"_"))
	section, field, ok := strings.Cut(rest, "_")
	if !ok {
		return rest
	}
	return section + "." + field
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return initViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return initViper().GetString(key)
}

// GetDatabasePath returns the configured database path
func GetDatabasePath() (string, error) {
	config, err := Load()
	if err != nil {
		return "", err
	}
	return config.Database.Path, nil
}
