package kaggle

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/teranos/dugout/am"
	"github.com/teranos/dugout/errors"
)

// Credentials authenticate against the Kaggle API
type Credentials struct {
	Username string `json:"username"`
	Key      string `json:"key"`
}

// Valid reports whether both halves are present
func (c Credentials) Valid() bool {
	return c.Username != "" && c.Key != ""
}

// ResolveCredentials prefers the configured pair (config file, DUGOUT_KAGGLE_*,
// KAGGLE_USERNAME/KAGGLE_KEY or .env, all already folded in by am) and falls
// back to ~/.kaggle/kaggle.json.
func ResolveCredentials(cfg am.KaggleConfig) (Credentials, error) {
	creds := Credentials{Username: cfg.Username, Key: cfg.Key}
	if creds.Valid() {
		return creds, nil
	}

	path := defaultCredentialsFile()
	if path != "" {
		fromFile, err := ReadCredentialsFile(path)
		if err == nil {
			return fromFile, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return Credentials{}, err
		}
	}

	return Credentials{}, errors.WithHint(
		errors.NewAuthFailureError("no Kaggle credentials configured"),
		"set KAGGLE_USERNAME and KAGGLE_KEY, add them to dugout.toml under [kaggle], or place kaggle.json in ~/.kaggle",
	)
}

// ReadCredentialsFile parses a kaggle.json API token file
func ReadCredentialsFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Credentials{}, errors.NewNotFoundError("credentials file %s does not exist", path)
	}
	if err != nil {
		return Credentials{}, errors.Wrapf(err, "read %s", path)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, errors.Wrapf(errors.Mark(err, errors.ErrAuthFailure), "parse %s", path)
	}
	if !creds.Valid() {
		return Credentials{}, errors.NewAuthFailureError("%s must contain both username and key", path)
	}
	return creds, nil
}

// credentialsDir is overridden in tests
var credentialsDir = func() string {
	if dir := os.Getenv("KAGGLE_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kaggle")
}

func defaultCredentialsFile() string {
	dir := credentialsDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "kaggle.json")
}
