// Package fswait waits for conditions with an explicit deadline. WaitForFile
// also wakes on filesystem events so a new download is noticed before the
// next poll tick.
package fswait

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

// Predicate reports whether the awaited condition holds.
type Predicate func() (bool, error)

// Poll checks predicate immediately and then every interval until it holds,
// it fails, timeout elapses (ErrTimeout) or ctx is done.
func Poll(ctx context.Context, interval, timeout time.Duration, predicate Predicate) error {
	return wait(ctx, interval, timeout, nil, nil, predicate)
}

// WaitForFile waits until path exists as a regular file. Besides polling it
// watches the parent directory for create and rename events.
func WaitForFile(ctx context.Context, path string, interval, timeout time.Duration) error {
	exists := func() (bool, error) {
		info, err := os.Stat(path)
		if err == nil {
			return info.Mode().IsRegular(), nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", path)
	}

	var events chan fsnotify.Event
	var watchErrs chan error
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if addErr := watcher.Add(filepath.Dir(path)); addErr == nil {
			events, watchErrs = watcher.Events, watcher.Errors
		} else {
			logger.Logger.Debugw("Directory watch unavailable, polling only",
				"symbol", sym.Pulse, logger.FieldPath, filepath.Dir(path), logger.FieldError, addErr)
		}
	}

	start := time.Now()
	if err := wait(ctx, interval, timeout, events, watchErrs, exists); err != nil {
		return errors.Wrapf(err, "waiting for %s", path)
	}
	logger.Logger.Debugw("File appeared",
		"symbol", sym.Pulse,
		logger.FieldPath, path,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

// wait runs predicate until it holds. events and watchErrs come from an
// fsnotify watcher and may be nil; watcher errors are logged and polling
// carries on.
func wait(ctx context.Context, interval, timeout time.Duration, events <-chan fsnotify.Event, watchErrs <-chan error, predicate Predicate) error {
	if interval <= 0 {
		return errors.NewInvalidArgumentError("poll interval must be positive, got %s", interval)
	}
	if timeout <= 0 {
		return errors.NewInvalidArgumentError("timeout must be positive, got %s", timeout)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := predicate()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait canceled")
		case <-deadline.C:
			// One last look so a file landing at the deadline still counts.
			if ok, err := predicate(); err != nil || ok {
				return err
			}
			return errors.NewTimeoutError("condition not met within %s", timeout)
		case <-ticker.C:
		case ev, open := <-events:
			if !open {
				events = nil
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Write) {
				continue
			}
		case werr, open := <-watchErrs:
			if !open {
				watchErrs = nil
				continue
			}
			logger.Logger.Debugw("Directory watch error, still polling",
				"symbol", sym.Pulse, logger.FieldError, werr)
			continue
		}
	}
}
