// Package gsheet moves frames into and out of Google Sheets.
package gsheet

import (
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/teranos/dugout/am"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/frame"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Client wraps the Sheets and Drive services
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
	logger *zap.SugaredLogger
}

// NewClient authenticates with the configured service account or user
// credentials file, or application default credentials when none is set.
// Extra options are appended to both services.
func NewClient(ctx context.Context, cfg am.SheetsConfig, opts ...option.ClientOption) (*Client, error) {
	base := []option.ClientOption{
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope),
	}
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); err != nil {
			return nil, errors.WithHint(
				errors.NewNotFoundError("credentials file %s: %v", cfg.CredentialsFile, err),
				"set sheets.credentials_file or GOOGLE_APPLICATION_CREDENTIALS to a service account JSON key",
			)
		}
		base = append(base, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	base = append(base, opts...)

	sheetsSvc, err := sheets.NewService(ctx, base...)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create sheets service"), errors.ErrAuthFailure)
	}
	driveSvc, err := drive.NewService(ctx, base...)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create drive service"), errors.ErrAuthFailure)
	}
	return New(sheetsSvc, driveSvc, nil), nil
}

// New wraps already constructed services
func New(sheetsSvc *sheets.Service, driveSvc *drive.Service, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = logger.ComponentLogger("gsheet")
	}
	return &Client{sheets: sheetsSvc, drive: driveSvc, logger: log}
}

// FrameToSheet creates a spreadsheet named title and writes the frame into
// its first sheet. Returns the spreadsheet ID.
func (c *Client) FrameToSheet(ctx context.Context, f *frame.Frame, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.NewInvalidArgumentError("spreadsheet title is empty")
	}
	start := time.Now()

	created, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return "", classify(err, "create spreadsheet %q", title)
	}
	if len(created.Sheets) == 0 || created.Sheets[0].Properties == nil {
		return "", errors.Newf("spreadsheet %q was created without a sheet", title)
	}
	first := created.Sheets[0].Properties

	values := FrameToValues(f)
	if err := c.ensureGrid(ctx, created.SpreadsheetId, first, len(values), len(f.Columns)); err != nil {
		return "", err
	}

	_, err = c.sheets.Spreadsheets.Values.Update(created.SpreadsheetId, a1(first.Title), &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", classify(err, "write values to %q", title)
	}

	c.logger.Infow("Frame written to sheet",
		"symbol", sym.SO,
		"spreadsheet_id", created.SpreadsheetId,
		logger.FieldRows, f.Len(),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return created.SpreadsheetId, nil
}

// ensureGrid grows the sheet when the data exceeds its default size
func (c *Client) ensureGrid(ctx context.Context, id string, props *sheets.SheetProperties, rows, cols int) error {
	grid := props.GridProperties
	if grid != nil && int64(rows) <= grid.RowCount && int64(cols) <= grid.ColumnCount {
		return nil
	}
	want := &sheets.GridProperties{RowCount: int64(rows), ColumnCount: int64(cols)}
	if grid != nil {
		want.RowCount = max(want.RowCount, grid.RowCount)
		want.ColumnCount = max(want.ColumnCount, grid.ColumnCount)
	}

	_, err := c.sheets.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{SheetId: props.SheetId, GridProperties: want},
				Fields:     "gridProperties(rowCount,columnCount)",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return classify(err, "resize sheet")
	}
	return nil
}

// SheetToFrame reads the sheet named sheetName from the spreadsheet titled
// title. An empty or unknown sheetName falls back to the first sheet.
func (c *Client) SheetToFrame(ctx context.Context, title, sheetName string) (*frame.Frame, error) {
	id, err := c.FindSpreadsheet(ctx, title)
	if err != nil {
		return nil, err
	}

	meta, err := c.sheets.Spreadsheets.Get(id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "read spreadsheet %q", title)
	}
	if len(meta.Sheets) == 0 {
		return nil, errors.NewNotFoundError("spreadsheet %q has no sheets", title)
	}

	target := meta.Sheets[0].Properties.Title
	found := false
	for _, s := range meta.Sheets {
		if sheetName != "" && s.Properties.Title == sheetName {
			target = s.Properties.Title
			found = true
			break
		}
	}
	if sheetName != "" && !found {
		c.logger.Warnw("Sheet not found, reading the first sheet",
			"symbol", sym.SO,
			"spreadsheet", title,
			"requested", sheetName,
			"fallback", target,
		)
	}

	resp, err := c.sheets.Spreadsheets.Values.Get(id, a1(target)).Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "read values of %q", target)
	}

	f := ValuesToFrame(resp.Values)
	c.logger.Infow("Sheet read",
		"symbol", sym.SO,
		"spreadsheet_id", id,
		"sheet", target,
		logger.FieldRows, f.Len(),
	)
	return f, nil
}

// FindSpreadsheet returns the ID of the most recently modified spreadsheet
// named title that the account can see.
func (c *Client) FindSpreadsheet(ctx context.Context, title string) (string, error) {
	q := "name = '" + escapeQuery(title) + "' and mimeType = '" + spreadsheetMimeType + "' and trashed = false"
	list, err := c.drive.Files.List().
		Q(q).
		OrderBy("modifiedTime desc").
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", classify(err, "search drive for %q", title)
	}
	if len(list.Files) == 0 {
		return "", errors.WithHint(
			errors.NewNotFoundError("no spreadsheet named %q", title),
			"share the spreadsheet with the service account email",
		)
	}
	return list.Files[0].Id, nil
}

// a1 quotes a sheet title as an A1 range covering the whole sheet
func a1(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
