package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/teranos/dugout/errors"
)

// IngestEntry records one download or load performed by the CLI.
type IngestEntry struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"job_id"`
	Source    string    `json:"source"` // retrosheet, fangraphs, kaggle, sheet, csv
	Target    string    `json:"target"` // URL, dataset ref or spreadsheet title
	Path      string    `json:"path"`
	Rows      int64     `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordIngest appends an entry to ingest_log. CreatedAt defaults to now.
func RecordIngest(ctx context.Context, db *sql.DB, e IngestEntry) (int64, error) {
	if e.Source == "" || e.Target == "" {
		return 0, errors.NewInvalidArgumentError("ingest entry needs a source and a target")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO ingest_log (job_id, source, target, path, row_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.JobID, e.Source, e.Target, e.Path, e.Rows, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, errors.Wrap(err, "record ingest")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "ingest id")
	}
	return id, nil
}

// IngestHistory returns the most recent entries first. limit <= 0 returns all.
func IngestHistory(ctx context.Context, db *sql.DB, limit int) ([]IngestEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, job_id, source, target, path, row_count, created_at FROM ingest_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query ingest history")
	}
	defer rows.Close()

	var entries []IngestEntry
	for rows.Next() {
		var e IngestEntry
		var created string
		if err := rows.Scan(&e.ID, &e.JobID, &e.Source, &e.Target, &e.Path, &e.Rows, &created); err != nil {
			return nil, errors.Wrap(err, "scan ingest entry")
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, errors.Wrapf(err, "parse created_at of ingest entry %d", e.ID)
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "iterate ingest history")
}
