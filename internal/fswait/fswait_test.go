package fswait

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/logger"
)

func TestPollSucceedsAfterSomeTicks(t *testing.T) {
	var calls atomic.Int32
	err := Poll(context.Background(), 5*time.Millisecond, time.Second, func() (bool, error) {
		return calls.Add(1) >= 3, nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestPollTimesOut(t *testing.T) {
	start := time.Now()
	err := Poll(context.Background(), 10*time.Millisecond, 50*time.Millisecond, func() (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestPollPropagatesPredicateError(t *testing.T) {
	boom := errors.New("boom")
	err := Poll(context.Background(), time.Millisecond, time.Second, func() (bool, error) {
		return false, boom
	})
	assert.True(t, errors.Is(err, boom))
}

func TestPollHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Poll(ctx, time.Second, time.Minute, func() (bool, error) { return false, nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.IsTimeout(err))
}

func TestPollRejectsBadDurations(t *testing.T) {
	never := func() (bool, error) { return false, nil }
	assert.True(t, errors.IsInvalidArgument(Poll(context.Background(), 0, time.Second, never)))
	assert.True(t, errors.IsInvalidArgument(Poll(context.Background(), time.Second, 0, never)))
}

func TestWaitDrainsWatcherErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Logger = prev })

	watchErrs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		watchErrs <- errors.New("fsnotify: queue or buffer overflow")
	}
	close(watchErrs)

	var calls atomic.Int32
	err := wait(context.Background(), 5*time.Millisecond, time.Second, nil, watchErrs, func() (bool, error) {
		return calls.Add(1) >= 6, nil
	})
	require.NoError(t, err)
	assert.Len(t, logs.FilterMessage("Directory watch error, still polling").All(), 3)
}

func TestWaitForFileNoticesCreation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FanGraphs Leaderboard.csv")

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, []byte("Name,HR\n"), 0o644)
	}()

	// The poll interval is longer than the test budget; the directory
	// watch has to deliver the wakeup.
	err := WaitForFile(context.Background(), path, 10*time.Second, 5*time.Second)
	require.NoError(t, err)
}

func TestWaitForFileExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "done.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, WaitForFile(context.Background(), path, time.Second, time.Second))
}

func TestWaitForFileTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.csv")
	err := WaitForFile(context.Background(), path, 10*time.Millisecond, 40*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.Contains(t, err.Error(), "never.csv")
}

func TestWaitForFileIgnoresDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir")
	require.NoError(t, os.Mkdir(path, 0o755))
	err := WaitForFile(context.Background(), path, 10*time.Millisecond, 40*time.Millisecond)
	assert.True(t, errors.IsTimeout(err))
}
