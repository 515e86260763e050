package db

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/teranos/dugout/errors"
)

// ErrDatabaseClosed marks work attempted on a closed handle.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err came from a closed handle, either
// ErrDatabaseClosed or the unexported error database/sql returns for a
// closed pool.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrDatabaseClosed) || strings.Contains(err.Error(), "database is closed")
}

// classify wraps a driver error from a write and marks it so callers can
// branch with errors.Is: constraint violations become ErrConflict, lock
// contention becomes ErrServiceUnavailable.
func classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrapf(err, format, args...)

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return wrapped
	}
	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		return errors.Mark(wrapped, errors.ErrConflict)
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return errors.WithHint(
			errors.Mark(wrapped, errors.ErrServiceUnavailable),
			"another process holds the database lock; retry when it finishes")
	}
	return wrapped
}
