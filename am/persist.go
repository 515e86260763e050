package am

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/teranos/dugout/errors"
)

// UserConfigPath returns ~/.dugout/dugout.toml
func UserConfigPath() string {
	dir := UserConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, ConfigFileName)
}

// SetValue writes key = raw into the TOML file at configPath, creating the
// file if needed and rotating backups of the previous content. The key must
// be a known setting; raw is stored as a bool, integer or float when it
// parses as one, otherwise as a string.
func SetValue(configPath, key, raw string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !IsKnownKey(key) {
		return errors.WithHint(
			errors.NewInvalidArgumentError("unknown config key %q", key),
			"run 'dugout am show' to list settings",
		)
	}

	config, err := readConfigMap(configPath)
	if err != nil {
		return err
	}

	setNested(config, strings.Split(key, "."), parseScalar(raw))

	// Re-validate the merged result before touching the file
	v := viper.New()
	SetDefaults(v)
	if err := v.MergeConfigMap(config); err != nil {
		return errors.Wrap(err, "failed to merge config")
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return err
	}
	// The kaggle pair check is left to Load so the two halves can be set one at a time
	if err := cfg.validateRanges(); err != nil {
		return errors.Mark(err, errors.ErrInvalidArgument)
	}

	return saveConfigMap(config, configPath)
}

// IsKnownKey reports whether key names a dugout setting
func IsKnownKey(key string) bool {
	v := viper.New()
	SetDefaults(v)
	for _, k := range v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

func readConfigMap(configPath string) (map[string]interface{}, error) {
	config := make(map[string]interface{})
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", configPath)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}
	return config, nil
}

func saveConfigMap(config map[string]interface{}, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

func setNested(config map[string]interface{}, path []string, value interface{}) {
	if len(path) == 1 {
		config[path[0]] = value
		return
	}
	child, ok := config[path[0]].(map[string]interface{})
	if !ok {
		child = make(map[string]interface{})
		config[path[0]] = child
	}
	setNested(child, path[1:], value)
}

func parseScalar(raw string) interface{} {
	s := strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return raw
}

// createBackup keeps up to three previous versions (.back1 newest)
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete .back3")
	}
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, 0600); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}
