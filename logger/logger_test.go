package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)

			Cleanup()
			Logger = zap.NewNop().Sugar()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{9, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "Trace (-vvv+)", LevelName(7))
	assert.Equal(t, "Unknown", LevelName(-3))
	assert.True(t, ShouldLogTrace(3))
	assert.False(t, ShouldLogTrace(2))
}

func TestTraceEnabledFollowsInitialize(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, InitializeWithVerbosity(false, VerbosityUser))
		Logger = zap.NewNop().Sugar()
	})

	require.NoError(t, InitializeWithVerbosity(false, VerbosityTrace))
	assert.True(t, TraceEnabled())

	require.NoError(t, InitializeWithVerbosity(true, VerbosityDebug))
	assert.False(t, TraceEnabled())
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core).Sugar()
	defer func() { Logger = zap.NewNop().Sugar() }()

	ctx := WithJobID(context.Background(), "job-42")
	ctx = WithComponent(ctx, "retrosheet")

	LoggerFromContext(ctx).Infow("fetched", FieldRows, 10)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "job-42", fields[FieldJobID])
	assert.Equal(t, "retrosheet", fields[FieldComponent])
	assert.EqualValues(t, 10, fields[FieldRows])
}

func TestJobIDFromContext(t *testing.T) {
	assert.Empty(t, JobIDFromContext(context.Background()))
	assert.Equal(t, "job-7", JobIDFromContext(WithJobID(context.Background(), "job-7")))
}

func TestLoggerFromContextWithoutFields(t *testing.T) {
	Logger = zap.NewNop().Sugar()
	assert.Same(t, Logger, LoggerFromContext(context.Background()))
}

func TestLoggingFunctionsWithNilLogger(t *testing.T) {
	Logger = nil
	defer func() { Logger = zap.NewNop().Sugar() }()

	assert.NotPanics(t, func() {
		Infow("x", "k", "v")
		Warnw("x")
		Errorw("x")
		Debugw("x")
		Cleanup()
	})
}
