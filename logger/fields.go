package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across dugout.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldJobID = "job_id"

	// Components
	FieldComponent = "component"
	FieldSource    = "source"

	// Operations
	FieldOperation = "operation"
	FieldURL       = "url"
	FieldQuery     = "query"
	FieldTable     = "table"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldRows  = "rows"
	FieldBytes = "bytes"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"

	// Matching
	FieldScorer    = "scorer"
	FieldThreshold = "threshold"
)

// Context keys for propagating logging context
type contextKey string

const (
	jobIDKey     contextKey = "logger_job_id"
	componentKey contextKey = "logger_component"
)

// WithJobID adds a job ID to the context for logging
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

// JobIDFromContext returns the job ID set by WithJobID, or "".
func JobIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(jobIDKey).(string)
	return id
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if jobID, ok := ctx.Value(jobIDKey).(string); ok && jobID != "" {
		fields = append(fields, FieldJobID, jobID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	fetcher := retrosheet.NewFetcher(client, url, logger.ComponentLogger("retrosheet"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
