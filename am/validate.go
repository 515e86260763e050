package am

import (
	"math"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/dugout/errors"
)

var knownScorers = map[string]bool{
	"ratio":                    true,
	"partial_ratio":            true,
	"token_sort_ratio":         true,
	"partial_token_sort_ratio": true,
	"token_set_ratio":          true,
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateRanges(); err != nil {
		return err
	}

	// A username without a key (or the reverse) is always a mistake
	if (c.Kaggle.Username == "") != (c.Kaggle.Key == "") {
		return errors.WithHint(
			errors.New("kaggle.username and kaggle.key must be set together"),
			"set both KAGGLE_USERNAME and KAGGLE_KEY, or neither to use ~/.kaggle/kaggle.json",
		)
	}
	return nil
}

func (c *Config) validateRanges() error {
	// Empty database path falls back to the default at load time
	if math.IsNaN(c.Match.Threshold) || c.Match.Threshold < 0 || c.Match.Threshold > 100 {
		return errors.Newf("match.threshold must be within [0, 100], got %v", c.Match.Threshold)
	}
	if c.Match.Scorer != "" && !knownScorers[strings.ToLower(strings.TrimSpace(c.Match.Scorer))] {
		return errors.WithHint(
			errors.Newf("match.scorer %q is not a known scorer", c.Match.Scorer),
			"use one of: partial_ratio, partial_token_sort_ratio, ratio, token_set_ratio, token_sort_ratio",
		)
	}
	// 0 workers means sequential, same as 1
	if c.Match.Workers < 0 {
		return errors.Newf("match.workers must be >= 0, got %d", c.Match.Workers)
	}

	if c.HTTP.TimeoutSeconds < 0 {
		return errors.Newf("http.timeout_seconds must be >= 0, got %d", c.HTTP.TimeoutSeconds)
	}
	// 0 = no rate limit
	if c.HTTP.RequestsPerSecond < 0 {
		return errors.Newf("http.requests_per_second must be >= 0, got %v", c.HTTP.RequestsPerSecond)
	}
	if c.HTTP.Burst < 0 {
		return errors.Newf("http.burst must be >= 0, got %d", c.HTTP.Burst)
	}
	if c.HTTP.MaxBodyMB < 0 {
		return errors.Newf("http.max_body_mb must be >= 0, got %d", c.HTTP.MaxBodyMB)
	}

	if c.FanGraphs.TimeoutSeconds < 0 {
		return errors.Newf("fangraphs.timeout_seconds must be >= 0, got %d", c.FanGraphs.TimeoutSeconds)
	}
	if _, err := shellquote.Split(c.FanGraphs.Command); err != nil {
		return errors.Wrap(err, "fangraphs.command")
	}

	return nil
}
