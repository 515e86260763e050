package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
	dbtest "github.com/teranos/dugout/internal/testing"
)

func battingFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f := frame.New("player", "hr", "games", "active")
	require.NoError(t, f.AppendRow("a", "Judge", 62.0, int64(157), true))
	require.NoError(t, f.AppendRow("b", "Alonso", nil, int64(161), false))
	require.NoError(t, f.AppendRow("c", "O'Neil", 4.5, int64(96), true))
	return f
}

func TestQuoteIdentifier(t *testing.T) {
	q, err := QuoteIdentifier(`game"logs`)
	require.NoError(t, err)
	assert.Equal(t, `"game""logs"`, q)

	for _, bad := range []string{"", "   ", "bad\x00name"} {
		_, err := QuoteIdentifier(bad)
		assert.True(t, errors.IsInvalidArgument(err), "%q", bad)
	}
}

func TestWriteFrameAndQuery(t *testing.T) {
	ctx := context.Background()
	db := dbtest.CreateTestDB(t)

	require.NoError(t, WriteFrame(ctx, db, "batting", battingFrame(t), WriteOptions{}))

	var ddl string
	require.NoError(t, db.QueryRow("SELECT sql FROM sqlite_master WHERE name = 'batting'").Scan(&ddl))
	assert.Contains(t, ddl, `"player" TEXT`)
	assert.Contains(t, ddl, `"hr" REAL`)
	assert.Contains(t, ddl, `"games" INTEGER`)
	assert.Contains(t, ddl, `"active" INTEGER`)

	got, err := Query(ctx, db, "SELECT player, hr, games FROM batting WHERE games > ? ORDER BY games DESC", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"player", "hr", "games"}, got.Columns)
	assert.Equal(t, []string{"0", "1"}, got.Index)
	assert.Equal(t, []any{"Alonso", nil, int64(161)}, got.Rows[0])
	assert.Equal(t, []any{"Judge", 62.0, int64(157)}, got.Rows[1])
}

func TestWriteFrameIfExists(t *testing.T) {
	ctx := context.Background()
	db := dbtest.CreateTestDB(t)
	f := battingFrame(t)

	require.NoError(t, WriteFrame(ctx, db, "batting", f, WriteOptions{}))

	err := WriteFrame(ctx, db, "batting", f, WriteOptions{IfExists: IfExistsFail})
	assert.True(t, errors.IsConflict(err))

	require.NoError(t, WriteFrame(ctx, db, "batting", f, WriteOptions{IfExists: IfExistsAppend}))
	assert.Equal(t, 6, countRows(t, db, "batting"))

	require.NoError(t, WriteFrame(ctx, db, "batting", f, WriteOptions{IfExists: IfExistsReplace}))
	assert.Equal(t, 3, countRows(t, db, "batting"))

	err = WriteFrame(ctx, db, "batting", f, WriteOptions{IfExists: "merge"})
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestWriteFrameIndexAndChunks(t *testing.T) {
	ctx := context.Background()
	db := dbtest.CreateTestDB(t)

	require.NoError(t, WriteFrame(ctx, db, "batting", battingFrame(t), WriteOptions{
		Index:      true,
		IndexLabel: "row_id",
		ChunkSize:  2,
	}))

	got, err := Query(ctx, db, `SELECT row_id, player FROM batting ORDER BY row_id`)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	assert.Equal(t, []any{"c", "O'Neil"}, got.Rows[2])
}

func TestTablesCreateInsertDeleteDrop(t *testing.T) {
	ctx := context.Background()
	db := dbtest.CreateTestDB(t)

	require.NoError(t, CreateTable(ctx, db, "teams", []Column{
		{Name: "code", Type: "TEXT"},
		{Name: "wins", Type: "INTEGER"},
		{Name: "payroll", Type: "NUMERIC(12, 2)"},
	}))
	require.NoError(t, CreateTable(ctx, db, "parks", []Column{{Name: "name", Type: "TEXT"}}))

	tables, err := Tables(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"parks", "teams"}, tables)

	require.NoError(t, InsertRow(ctx, db, "teams", []string{"code", "wins"}, []any{"NYY", 99}))
	require.NoError(t, InsertRow(ctx, db, "teams", []string{"code", "wins"}, []any{"BOS", 78}))
	require.NoError(t, InsertRow(ctx, db, "teams", []string{"code", "wins"}, []any{"TOR", 92}))

	n, err := DeleteRows(ctx, db, "teams", "wins < ?", 90)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 2, countRows(t, db, "teams"))

	require.NoError(t, DropTable(ctx, db, "parks"))
	err = DropTable(ctx, db, "parks")
	assert.True(t, errors.IsNotFound(err))

	tables, err = Tables(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"teams"}, tables)
}

func TestTableArgumentValidation(t *testing.T) {
	ctx := context.Background()
	db := dbtest.CreateTestDB(t)

	err := CreateTable(ctx, db, "teams", nil)
	assert.True(t, errors.IsInvalidArgument(err))

	err = CreateTable(ctx, db, "teams", []Column{{Name: "code", Type: "TEXT); DROP TABLE x; --"}})
	assert.True(t, errors.IsInvalidArgument(err))

	err = InsertRow(ctx, db, "teams", []string{"code"}, []any{"NYY", 1})
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = DeleteRows(ctx, db, "teams", " ")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestInsertRowInTransaction(t *testing.T) {
	ctx := context.Background()
	db := dbtest.CreateTestDB(t)
	require.NoError(t, CreateTable(ctx, db, "teams", []Column{{Name: "code", Type: "TEXT"}}))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, InsertRow(ctx, tx, "teams", []string{"code"}, []any{"SEA"}))
	require.NoError(t, tx.Rollback())

	assert.Equal(t, 0, countRows(t, db, "teams"))
}

func TestInsertRowConstraintIsConflict(t *testing.T) {
	ctx := context.Background()
	db := dbtest.CreateTestDB(t)
	_, err := db.Exec(`CREATE TABLE teams (code TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	require.NoError(t, InsertRow(ctx, db, "teams", []string{"code"}, []any{"NYY"}))
	err = InsertRow(ctx, db, "teams", []string{"code"}, []any{"NYY"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	f := frame.New("code")
	require.NoError(t, f.AppendRow("0", "NYY"))
	err = WriteFrame(ctx, db, "teams", f, WriteOptions{IfExists: IfExistsAppend})
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestQueryDriverFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT \\* FROM batting").WillReturnError(errors.New("disk I/O error"))

	_, err = Query(context.Background(), db, "SELECT * FROM batting")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteFrameRollsBackFailedChunk(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	f := frame.New("player")
	require.NoError(t, f.AppendRow("0", "Judge"))

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM sqlite_master").
		WithArgs("batting").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("CREATE TABLE \"batting\"").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO \"batting\"").
		ExpectExec().
		WithArgs("Judge").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err = WriteFrame(context.Background(), db, "batting", f, WriteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRowsRowsAffectedFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM \"teams\" WHERE code = \\?").
		WithArgs("NYY").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("driver does not support RowsAffected")))

	_, err = DeleteRows(context.Background(), db, "teams", "code = ?", "NYY")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	quoted, err := QuoteIdentifier(table)
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+quoted).Scan(&n))
	return n
}
