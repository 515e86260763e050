package am

import (
	"os"
	"sort"
	"strings"

	"github.com/teranos/dugout/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/dugout/dugout.toml
	SourceUser        ConfigSource = "user"        // ~/.dugout/dugout.toml
	SourceProject     ConfigSource = "project"     // dugout.toml found walking up from cwd
	SourceDotEnv      ConfigSource = "dotenv"      // project .env
	SourceEnvironment ConfigSource = "environment" // DUGOUT_* and credential variables
)

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string // file path or environment variable name
}

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key" yaml:"key"`
	Value      interface{}  `json:"value" yaml:"value"`
	Source     ConfigSource `json:"source" yaml:"source"`
	SourcePath string       `json:"source_path,omitempty" yaml:"source_path,omitempty"`
}

// ConfigIntrospection provides metadata about the active configuration
type ConfigIntrospection struct {
	Settings []SettingInfo `json:"settings" yaml:"settings"`
}

// Lookup returns the setting with the given dotted key
func (ci *ConfigIntrospection) Lookup(key string) (SettingInfo, bool) {
	for _, s := range ci.Settings {
		if s.Key == key {
			return s, true
		}
	}
	return SettingInfo{}, false
}

// GetConfigIntrospection reports every effective setting with the source
// recorded while loading
func GetConfigIntrospection() (*ConfigIntrospection, error) {
	v := GetViper()
	if v == nil {
		return nil, errors.New("configuration not initialised")
	}

	introspection := &ConfigIntrospection{Settings: make([]SettingInfo, 0)}
	flattenSettingsWithSources(v.AllSettings(), "", introspection, ConfigSources)
	return introspection, nil
}

// flattenSettingsWithSources flattens settings and assigns sources from sourceMap
func flattenSettingsWithSources(settings map[string]interface{}, prefix string, introspection *ConfigIntrospection, sourceMap map[string]SourceInfo) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := settings[key]
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nestedMap, ok := value.(map[string]interface{}); ok {
			flattenSettingsWithSources(nestedMap, fullKey, introspection, sourceMap)
			continue
		}

		sourceInfo := SourceInfo{Source: SourceDefault, Path: "built-in default"}
		if si, ok := sourceMap[fullKey]; ok {
			sourceInfo = si
		}

		if env, ok := activeEnvVar(fullKey); ok {
			sourceInfo = SourceInfo{Source: SourceEnvironment, Path: env}
		}

		if _, sensitive := sensitiveEnvVars[fullKey]; sensitive && value != "" {
			value = redacted
		}

		introspection.Settings = append(introspection.Settings, SettingInfo{
			Key:        fullKey,
			Value:      value,
			Source:     sourceInfo.Source,
			SourcePath: sourceInfo.Path,
		})
	}
}

const redacted = "********"

// activeEnvVar reports which environment variable, if any, overrides key
func activeEnvVar(key string) (string, bool) {
	candidates := []string{prefixedEnv(key)}
	if env, ok := sensitiveEnvVars[key]; ok {
		candidates = append(candidates, env)
	}
	for _, name := range candidates {
		if os.Getenv(name) != "" {
			return name, true
		}
	}
	return "", false
}

// GetConfigSummary counts settings by source
func GetConfigSummary() map[string]int {
	summary := map[string]int{}
	introspection, err := GetConfigIntrospection()
	if err != nil {
		return summary
	}
	for _, setting := range introspection.Settings {
		summary[string(setting.Source)]++
	}
	return summary
}

// RedactedSettings returns the effective settings as nested maps with
// credentials masked, ready for TOML, YAML or JSON output.
func RedactedSettings() map[string]interface{} {
	settings := GetViper().AllSettings()
	for key := range sensitiveEnvVars {
		section, field, _ := strings.Cut(key, ".")
		if m, ok := settings[section].(map[string]interface{}); ok {
			if v, ok := m[field]; ok && v != "" {
				m[field] = redacted
			}
		}
	}
	return settings
}
