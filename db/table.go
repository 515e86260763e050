package db

import (
	"context"
	"database/sql"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

// IfExists selects WriteFrame's behaviour when the table already exists.
type IfExists string

const (
	IfExistsFail    IfExists = "fail"
	IfExistsReplace IfExists = "replace"
	IfExistsAppend  IfExists = "append"
)

// DefaultChunkSize is the number of rows WriteFrame commits per transaction.
const DefaultChunkSize = 5000

// WriteOptions controls WriteFrame. The zero value replaces the table,
// omits the index and commits every DefaultChunkSize rows.
type WriteOptions struct {
	IfExists   IfExists
	Index      bool
	IndexLabel string
	ChunkSize  int
}

// Column is a column name and its SQL type, as used by CreateTable.
type Column struct {
	Name string
	Type string
}

// Execer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var sqlType = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*\d+\s*(,\s*\d+\s*)?\))?$`)

// QuoteIdentifier validates a table or column name and returns it quoted.
func QuoteIdentifier(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.NewInvalidArgumentError("identifier must not be empty")
	}
	if strings.ContainsRune(name, 0) {
		return "", errors.NewInvalidArgumentError("identifier %q contains a NUL byte", name)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
}

func quoteAll(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		q, err := QuoteIdentifier(n)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

// Query runs a SELECT and returns the result as a frame with a positional
// index. TEXT and BLOB cells become strings, timestamps RFC 3339 strings.
func Query(ctx context.Context, db *sql.DB, query string, args ...any) (*frame.Frame, error) {
	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "read result columns")
	}

	f := frame.New(columns...)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		for i, v := range values {
			values[i] = normalizeCell(v)
		}
		if err := f.AppendRow(strconv.Itoa(f.Len()), values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}

	logger.Logger.Debugw("Query complete",
		"symbol", sym.DB,
		logger.FieldQuery, query,
		logger.FieldRows, f.Len(),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return f, nil
}

func normalizeCell(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// WriteFrame stores f as a table. Column types are inferred from the cells:
// all floats map to REAL, all integers or booleans to INTEGER, anything
// else to TEXT.
func WriteFrame(ctx context.Context, db *sql.DB, table string, f *frame.Frame, opts WriteOptions) error {
	start := time.Now()
	if opts.IfExists == "" {
		opts.IfExists = IfExistsReplace
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	switch opts.IfExists {
	case IfExistsFail, IfExistsReplace, IfExistsAppend:
	default:
		return errors.NewInvalidArgumentError("unknown if-exists mode %q", string(opts.IfExists))
	}

	quotedTable, err := QuoteIdentifier(table)
	if err != nil {
		return err
	}

	columns := append([]string(nil), f.Columns...)
	types := inferColumnTypes(f)
	if opts.Index {
		label := opts.IndexLabel
		if label == "" {
			label = "index"
		}
		columns = append([]string{label}, columns...)
		types = append([]string{"TEXT"}, types...)
	}
	quotedCols, err := quoteAll(columns)
	if err != nil {
		return err
	}

	exists, err := tableExists(ctx, db, table)
	if err != nil {
		return err
	}
	if exists {
		switch opts.IfExists {
		case IfExistsFail:
			return errors.NewConflictError("table %q already exists", table)
		case IfExistsReplace:
			if _, err := db.ExecContext(ctx, "DROP TABLE "+quotedTable); err != nil {
				return errors.Wrapf(err, "drop table %s", table)
			}
			exists = false
		}
	}
	if !exists {
		defs := make([]string, len(quotedCols))
		for i, q := range quotedCols {
			defs[i] = q + " " + types[i]
		}
		if _, err := db.ExecContext(ctx, "CREATE TABLE "+quotedTable+" ("+strings.Join(defs, ", ")+")"); err != nil {
			return errors.Wrapf(err, "create table %s", table)
		}
	}

	insert := insertStatement(quotedTable, quotedCols)
	for lo := 0; lo < f.Len(); lo += opts.ChunkSize {
		hi := lo + opts.ChunkSize
		if hi > f.Len() {
			hi = f.Len()
		}
		if err := writeChunk(ctx, db, insert, f, lo, hi, opts.Index); err != nil {
			return errors.Wrapf(err, "write rows %d-%d into %s", lo, hi, table)
		}
	}

	logger.Logger.Infow("Frame written",
		"symbol", sym.DB,
		logger.FieldTable, table,
		logger.FieldRows, f.Len(),
		"if_exists", string(opts.IfExists),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

func writeChunk(ctx context.Context, db *sql.DB, insert string, f *frame.Frame, lo, hi int, withIndex bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for r := lo; r < hi; r++ {
		args := make([]any, 0, len(f.Columns)+1)
		if withIndex {
			args = append(args, f.Index[r])
		}
		for _, v := range f.Rows[r] {
			if frame.IsMissing(v) {
				v = nil
			}
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return classify(err, "insert row %q", f.Index[r])
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func insertStatement(quotedTable string, quotedCols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(quotedCols)), ", ")
	return "INSERT INTO " + quotedTable + " (" + strings.Join(quotedCols, ", ") + ") VALUES (" + placeholders + ")"
}

func inferColumnTypes(f *frame.Frame) []string {
	types := make([]string, len(f.Columns))
	for c := range f.Columns {
		allFloat, allInt, seen := true, true, false
		for _, row := range f.Rows {
			v := row[c]
			if frame.IsMissing(v) {
				continue
			}
			seen = true
			switch v.(type) {
			case float64, float32:
				allInt = false
			case int64, int, int32, bool:
				allFloat = false
			default:
				allFloat, allInt = false, false
			}
		}
		switch {
		case !seen:
			types[c] = "TEXT"
		case allInt:
			types[c] = "INTEGER"
		case allFloat:
			types[c] = "REAL"
		default:
			types[c] = "TEXT"
		}
	}
	return types
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if err != nil {
		return false, errors.Wrapf(err, "check table %s", table)
	}
	return n > 0, nil
}

// Tables lists user tables in name order, excluding SQLite's own.
func Tables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan table name")
		}
		tables = append(tables, name)
	}
	return tables, errors.Wrap(rows.Err(), "iterate tables")
}

// DropTable removes a table. A missing table is ErrNotFound.
func DropTable(ctx context.Context, db *sql.DB, table string) error {
	quoted, err := QuoteIdentifier(table)
	if err != nil {
		return err
	}
	exists, err := tableExists(ctx, db, table)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewNotFoundError("table %q does not exist", table)
	}
	if _, err := db.ExecContext(ctx, "DROP TABLE "+quoted); err != nil {
		return errors.Wrapf(err, "drop table %s", table)
	}
	logger.Logger.Infow("Table dropped", "symbol", sym.DB, logger.FieldTable, table)
	return nil
}

// CreateTable creates a table if it does not already exist.
func CreateTable(ctx context.Context, db *sql.DB, table string, columns []Column) error {
	if len(columns) == 0 {
		return errors.NewInvalidArgumentError("table %q needs at least one column", table)
	}
	quoted, err := QuoteIdentifier(table)
	if err != nil {
		return err
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		name, err := QuoteIdentifier(c.Name)
		if err != nil {
			return err
		}
		if !sqlType.MatchString(c.Type) {
			return errors.NewInvalidArgumentError("column %q has invalid type %q", c.Name, c.Type)
		}
		defs[i] = name + " " + c.Type
	}
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+quoted+" ("+strings.Join(defs, ", ")+")"); err != nil {
		return errors.Wrapf(err, "create table %s", table)
	}
	return nil
}

// InsertRow inserts one row. Pass a *sql.Tx to batch several inserts.
func InsertRow(ctx context.Context, db Execer, table string, columns []string, values []any) error {
	if len(columns) == 0 || len(columns) != len(values) {
		return errors.NewInvalidArgumentError("insert into %q: %d columns, %d values", table, len(columns), len(values))
	}
	quoted, err := QuoteIdentifier(table)
	if err != nil {
		return err
	}
	cols, err := quoteAll(columns)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, insertStatement(quoted, cols), values...); err != nil {
		return classify(err, "insert into %s", table)
	}
	return nil
}

// DeleteRows deletes the rows matching where and returns how many were
// removed. where is a SQL boolean expression with ? placeholders bound to
// args; it must not be empty ("1=1" deletes everything).
func DeleteRows(ctx context.Context, db *sql.DB, table, where string, args ...any) (int64, error) {
	if strings.TrimSpace(where) == "" {
		return 0, errors.WithHint(
			errors.NewInvalidArgumentError("delete from %q without a where clause", table),
			"use \"1=1\" to delete every row")
	}
	quoted, err := QuoteIdentifier(table)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, "DELETE FROM "+quoted+" WHERE "+where, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "delete from %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	logger.Logger.Infow("Rows deleted", "symbol", sym.DB, logger.FieldTable, table, logger.FieldRows, n)
	return n, nil
}
