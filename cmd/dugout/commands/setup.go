package commands

import (
	"context"
	"database/sql"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/teranos/dugout/am"
	"github.com/teranos/dugout/db"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
	"github.com/teranos/dugout/internal/httpclient"
	"github.com/teranos/dugout/logger"
)

// Setup initialises logging and tags the command context with a job ID.
// It runs before every command.
func Setup(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	jsonLogs := false
	if cfg, err := am.Load(); err == nil {
		jsonLogs = cfg.Log.JSON
	}
	if err := logger.InitializeWithVerbosity(jsonLogs, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	jobID := uuid.NewString()
	ctx = logger.WithJobID(ctx, jobID)
	cmd.SetContext(ctx)

	logger.Logger.Debugw("Command started",
		logger.FieldJobID, jobID,
		logger.FieldOperation, cmd.CommandPath(),
		"verbosity", logger.LevelName(verbosity),
	)
	return nil
}

// loadConfig loads configuration and applies the validation Load performs
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// openDatabase opens and migrates the database at dbPath, or the
// configured one when dbPath is empty.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := am.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		dbPath = path
	}
	if dbPath == "" {
		dbPath = am.DefaultDatabasePath
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, nil
}

// newHTTPClient builds the shared HTTP client from the [http] section
func newHTTPClient(cfg am.HTTPConfig) *httpclient.Client {
	opts := httpclient.Options{
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		UserAgent:         cfg.UserAgent,
		MaxBodyBytes:      int64(cfg.MaxBodyMB) << 20,
	}
	// 0 in config means unlimited
	if cfg.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = float64(rate.Inf)
	}
	return httpclient.New(opts)
}

// readCSVFile reads a CSV file into a frame
func readCSVFile(path string, opts frame.CSVOptions) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("file %s does not exist", path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	fr, err := frame.ReadCSV(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return fr, nil
}

// writeCSVFile writes a frame as CSV, replacing path
func writeCSVFile(path string, f interface{ WriteCSV(w io.Writer) error }) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := f.WriteCSV(out); err != nil {
		out.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return out.Close()
}

// recordIngest logs a load into ingest_log; failures are logged, not returned
func recordIngest(ctx context.Context, database *sql.DB, source, target, path string, rows int) {
	_, err := db.RecordIngest(ctx, database, db.IngestEntry{
		JobID:  logger.JobIDFromContext(ctx),
		Source: source,
		Target: target,
		Path:   path,
		Rows:   int64(rows),
	})
	if err != nil {
		logger.LoggerFromContext(ctx).Warnw("Failed to record ingest", logger.FieldError, err)
	}
}
