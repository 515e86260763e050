// Package retrosheet downloads and parses Retrosheet game logs.
package retrosheet

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	getter "github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/internal/httpclient"
	"github.com/teranos/dugout/internal/util"
	"github.com/teranos/dugout/sym"
)

// DefaultIndexURL lists the yearly game log archives.
const DefaultIndexURL = "https://www.retrosheet.org/gamelogs/index.html"

// Fetcher locates and downloads game log archives.
type Fetcher struct {
	IndexURL string

	client *httpclient.Client
	logger *zap.SugaredLogger
}

// NewFetcher creates a fetcher; an empty indexURL uses DefaultIndexURL.
func NewFetcher(client *httpclient.Client, indexURL string, logger *zap.SugaredLogger) *Fetcher {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fetcher{IndexURL: indexURL, client: client, logger: logger}
}

// FindGameLogURL returns the absolute URL of the archive linked with the
// year as its text on the index page.
func (f *Fetcher) FindGameLogURL(ctx context.Context, year int) (string, error) {
	if year < 1871 || year > time.Now().Year()+1 {
		return "", errors.NewInvalidArgumentError("year %d outside the game log range", year)
	}
	base, err := f.client.ValidateURL(f.IndexURL)
	if err != nil {
		return "", err
	}
	body, err := f.client.Get(ctx, f.IndexURL)
	if err != nil {
		return "", errors.Wrap(err, "fetch game log index")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "parse game log index")
	}

	want := strconv.Itoa(year)
	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != want {
			return true
		}
		href, _ = a.Attr("href")
		return false
	})
	if href == "" {
		return "", errors.NewNotFoundError("no game log link for %d on %s", year, f.IndexURL)
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", errors.Wrapf(err, "invalid game log link %q", href)
	}
	return base.ResolveReference(ref).String(), nil
}

// Download fetches the archive for year, extracts it into destDir and
// returns the extracted file paths in name order.
func (f *Fetcher) Download(ctx context.Context, year int, destDir string) ([]string, error) {
	start := time.Now()
	archiveURL, err := f.FindGameLogURL(ctx, year)
	if err != nil {
		return nil, err
	}

	src, err := url.Parse(archiveURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse archive URL")
	}
	// Force zip handling whatever the link's extension.
	q := src.Query()
	q.Set("archive", "zip")
	src.RawQuery = q.Encode()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", destDir)
	}
	staging, err := os.MkdirTemp(destDir, ".retrosheet-")
	if err != nil {
		return nil, errors.Wrap(err, "create staging directory")
	}
	defer os.RemoveAll(staging)

	httpGetter := &getter.HttpGetter{Client: f.client.HTTPClient()}
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src.String(),
		Dst:  filepath.Join(staging, "extract"),
		Mode: getter.ClientModeDir,
		Getters: map[string]getter.Getter{
			"http":  httpGetter,
			"https": httpGetter,
		},
	}
	if err := client.Get(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "game log download canceled")
		}
		return nil, errors.Wrapf(err, "download %s", archiveURL)
	}

	files, err := util.MoveTree(client.Dst, destDir)
	if err != nil {
		return nil, err
	}

	f.logger.Infow("Game logs downloaded",
		"symbol", sym.IX,
		"year", year,
		"url", archiveURL,
		"files", len(files),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return files, nil
}
