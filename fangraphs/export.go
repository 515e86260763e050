// Package fangraphs exports FanGraphs leaderboards as CSV files.
//
// The leaderboard page offers its export through a button, so the actual
// click is delegated to a Trigger. DirectExport covers endpoints that answer
// the leaderboard URL with CSV directly. CommandTrigger runs a configured
// browser automation command for the real page.
package fangraphs

import (
	"bufio"
	"bytes"
	"context"
	"mime"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/internal/fswait"
	"github.com/teranos/dugout/internal/httpclient"
	"github.com/teranos/dugout/sym"
)

const (
	DefaultBaseURL      = "https://www.fangraphs.com/leaders.aspx"
	DefaultElementID    = "LeaderBoard1_cmdCSV"
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = time.Second

	// ExportFileName is the name the site gives the exported file.
	ExportFileName = "FanGraphs Leaderboard.csv"
)

// Trigger loads pageURL, activates the export element and lets the export
// land in downloadDir as ExportFileName. It may return before the file exists.
type Trigger interface {
	Trigger(ctx context.Context, pageURL, elementID, downloadDir string) error
}

// DirectExport fetches pageURL itself and saves the body as the export.
// Responses that are not CSV are refused: the live leaderboard answers with
// its HTML page, which needs a CommandTrigger instead.
type DirectExport struct {
	Client *httpclient.Client
}

// csvMediaTypes are the Content-Types accepted as a CSV export. Servers
// that send no Content-Type at all are judged by the body alone.
var csvMediaTypes = map[string]bool{
	"text/csv":                    true,
	"application/csv":             true,
	"text/comma-separated-values": true,
	"application/vnd.ms-excel":    true,
	"text/plain":                  true,
	"application/octet-stream":    true,
}

var utf8BOM = []byte("\xef\xbb\xbf")

func (d *DirectExport) Trigger(ctx context.Context, pageURL, _ string, downloadDir string) error {
	resp, err := d.Client.Open(ctx, pageURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !csvMediaTypes[mediaType] {
			return notCSV(pageURL, "Content-Type %q", ct)
		}
	}

	body := bufio.NewReader(resp.Body)
	head, _ := body.Peek(512)
	head = bytes.TrimLeft(bytes.TrimPrefix(head, utf8BOM), " \t\r\n")
	if len(head) > 0 && head[0] == '<' {
		return notCSV(pageURL, "a markup body")
	}

	_, err = d.Client.Save(body, pageURL, filepath.Join(downloadDir, ExportFileName))
	return err
}

func notCSV(pageURL, format string, args ...interface{}) error {
	err := errors.NewInvalidArgumentError("%s answered with "+format+", not a CSV export",
		append([]interface{}{pageURL}, args...)...)
	return errors.WithHint(err, "the leaderboard page needs a browser; set fangraphs.command to an export script")
}

// Downloader runs one leaderboard export per call.
type Downloader struct {
	BaseURL      string
	ElementID    string
	Timeout      time.Duration
	PollInterval time.Duration

	trigger Trigger
	logger  *zap.SugaredLogger
}

// NewDownloader creates a downloader with the default page, element and timeout.
func NewDownloader(trigger Trigger, logger *zap.SugaredLogger) *Downloader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Downloader{
		BaseURL:      DefaultBaseURL,
		ElementID:    DefaultElementID,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		trigger:      trigger,
		logger:       logger,
	}
}

// Download exports the leaderboard for params into dir and returns the file
// path. The export is renamed to newName when given and keeps
// ExportFileName otherwise. A leftover export from an earlier run is removed
// first so it cannot be mistaken for the new one.
func (d *Downloader) Download(ctx context.Context, params Params, dir, newName string) (string, error) {
	start := time.Now()
	if newName != "" && filepath.Base(newName) != newName {
		return "", errors.NewInvalidArgumentError("new file name %q must not contain a directory", newName)
	}
	pageURL, err := UpdateURLParams(d.BaseURL, params.Values())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}

	exportPath := filepath.Join(dir, ExportFileName)
	if err := os.Remove(exportPath); err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "remove stale export %s", exportPath)
	}

	d.logger.Debugw("Triggering leaderboard export", "symbol", sym.IX, "url", pageURL, "element", d.ElementID)
	if err := d.trigger.Trigger(ctx, pageURL, d.ElementID, dir); err != nil {
		return "", errors.Wrap(err, "trigger leaderboard export")
	}

	if err := fswait.WaitForFile(ctx, exportPath, d.PollInterval, d.Timeout); err != nil {
		if errors.IsTimeout(err) {
			return "", errors.WithHint(err, "the export did not appear; check the page URL and element id")
		}
		return "", err
	}

	final := exportPath
	if newName != "" {
		final = filepath.Join(dir, newName)
		if err := os.Rename(exportPath, final); err != nil {
			return "", errors.Wrapf(err, "rename export to %s", final)
		}
	}

	d.logger.Infow("Leaderboard exported",
		"symbol", sym.IX,
		"season", params.Season,
		"stats", params.Stats,
		"path", final,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return final, nil
}
