// Package fuzzy joins two lists of names by string similarity. Every
// distinct source value is paired with its best-scoring distinct target
// value, or marked absent when nothing reaches the threshold.
package fuzzy

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/logger"
)

// Matcher holds a validated threshold and scoring method.
type Matcher struct {
	Threshold float64
	Method    Method
	// Workers bounds the goroutines scoring sources; <= 1 runs sequentially.
	Workers int

	scorer Scorer
	logger *zap.SugaredLogger
	trace  bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWorkers sets the number of concurrent scoring goroutines.
func WithWorkers(n int) Option {
	return func(m *Matcher) { m.Workers = n }
}

// WithLogger sets the logger for debug output.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Matcher) { m.logger = log }
}

// WithTrace logs every candidate score at debug level. It needs a logger.
func WithTrace(enabled bool) Option {
	return func(m *Matcher) { m.trace = enabled }
}

// NewMatcher validates the threshold and method.
func NewMatcher(threshold float64, method Method, opts ...Option) (*Matcher, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 100 {
		return nil, errors.NewInvalidArgumentError("threshold %v outside [0, 100]", threshold)
	}
	scorer, err := method.Scorer()
	if err != nil {
		return nil, err
	}
	m := &Matcher{Threshold: threshold, Method: method, Workers: 1, scorer: scorer}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Match is a convenience wrapper around NewMatcher and Matcher.Match.
func Match(source, target []string, threshold float64, method Method) (Table, error) {
	m, err := NewMatcher(threshold, method)
	if err != nil {
		return nil, err
	}
	return m.Match(source, target), nil
}

// Match pairs each distinct source value, in first-occurrence order, with
// its best distinct target. Ties keep the target seen first in target.
// Neither input slice is modified.
func (m *Matcher) Match(source, target []string) Table {
	start := time.Now()
	sources := distinct(source)
	targets := distinct(target)
	table := make(Table, len(sources))

	if m.Workers > 1 && len(sources) > 1 {
		g, _ := errgroup.WithContext(context.Background())
		g.SetLimit(m.Workers)
		for i, s := range sources {
			g.Go(func() error {
				table[i] = m.best(s, targets)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, s := range sources {
			table[i] = m.best(s, targets)
		}
	}

	if m.logger != nil {
		m.logger.Debugw("fuzzy match",
			"sources", len(sources),
			"targets", len(targets),
			"matched", table.Matched(),
			logger.FieldScorer, string(m.Method),
			logger.FieldThreshold, m.Threshold,
			"workers", m.Workers,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return table
}

func (m *Matcher) best(source string, targets []string) Record {
	rec := Record{Source: source}
	bestScore := -1
	bestTarget := ""
	for _, t := range targets {
		score := m.scorer(source, t)
		if m.trace && m.logger != nil {
			m.logger.Debugw("candidate", logger.FieldSource, source, "target", t, "score", score)
		}
		if score > bestScore {
			bestScore, bestTarget = score, t
		}
	}
	if bestScore < 0 {
		return rec
	}
	rec.Score = bestScore
	if float64(bestScore) >= m.Threshold {
		rec.Match = bestTarget
		rec.Matched = true
	}
	return rec
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
