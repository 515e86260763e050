// Package kaggle downloads dataset and competition files from the Kaggle API.
package kaggle

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/internal/httpclient"
	"github.com/teranos/dugout/internal/util"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

// DefaultBaseURL is the Kaggle REST API root
const DefaultBaseURL = "https://www.kaggle.com/api/v1"

var (
	datasetRef = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*/[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	slugRef    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

// Client talks to the Kaggle API with explicit credentials
type Client struct {
	BaseURL string

	creds  Credentials
	http   *httpclient.Client
	logger *zap.SugaredLogger
}

// File is the outcome of one requested file
type File struct {
	Name    string   `json:"name"`    // name as requested
	Paths   []string `json:"paths"`   // files written, more than one when a zip was extracted
	Skipped bool     `json:"skipped"` // already present and force was false
}

// NewClient creates a client; an empty baseURL uses DefaultBaseURL.
// Credentials are never written to the process environment.
func NewClient(creds Credentials, client *httpclient.Client, baseURL string, log *zap.SugaredLogger) (*Client, error) {
	if !creds.Valid() {
		return nil, errors.NewAuthFailureError("kaggle client needs both username and key")
	}
	if client == nil {
		return nil, errors.NewInvalidArgumentError("kaggle client needs an HTTP client")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    client,
		logger:  log,
	}, nil
}

// DownloadDatasetFiles downloads the named files of the dataset ref
// ("owner/slug") into dir.
func (c *Client) DownloadDatasetFiles(ctx context.Context, ref string, files []string, dir string, force bool) ([]File, error) {
	if !datasetRef.MatchString(ref) {
		return nil, errors.WithHint(
			errors.NewInvalidArgumentError("dataset reference %q is not owner/slug", ref),
			"use the form shown in the dataset URL, e.g. seanlahman/the-history-of-baseball",
		)
	}
	owner, slug, _ := strings.Cut(ref, "/")
	return c.downloadAll(ctx, "dataset", ref, files, dir, force, func(name string) string {
		return c.endpoint("datasets", "download", owner, slug, name)
	})
}

// DownloadCompetitionFiles downloads the named files of a competition into
// dir. The account must have accepted the competition rules.
func (c *Client) DownloadCompetitionFiles(ctx context.Context, competition string, files []string, dir string, force bool) ([]File, error) {
	if !slugRef.MatchString(competition) {
		return nil, errors.NewInvalidArgumentError("competition name %q is not a slug", competition)
	}
	return c.downloadAll(ctx, "competition", competition, files, dir, force, func(name string) string {
		return c.endpoint("competitions", "data", "download", competition, name)
	})
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.BaseURL + "/" + strings.Join(escaped, "/")
}

func (c *Client) downloadAll(ctx context.Context, kind, ref string, files []string, dir string, force bool, urlFor func(string) string) ([]File, error) {
	if len(files) == 0 {
		return nil, errors.NewInvalidArgumentError("no files requested from %s %s", kind, ref)
	}
	for _, name := range files {
		if name == "" || path.IsAbs(name) || strings.Contains(name, "..") {
			return nil, errors.NewInvalidArgumentError("file name %q is not a plain name", name)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}

	log := c.logger.With(logger.FieldSource, kind+":"+ref)
	results := make([]File, 0, len(files))
	for _, name := range files {
		start := time.Now()
		result, err := c.downloadOne(ctx, urlFor(name), name, dir, force)
		if err != nil {
			return results, errors.Wrapf(err, "download %s from %s %s", name, kind, ref)
		}
		results = append(results, result)

		if result.Skipped {
			log.Infow("Kaggle file already present, skipping",
				"symbol", sym.IX,
				logger.FieldFile, name,
			)
			continue
		}
		log.Infow("Kaggle file downloaded",
			"symbol", sym.IX,
			logger.FieldFile, name,
			logger.FieldCount, len(result.Paths),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return results, nil
}

func (c *Client) downloadOne(ctx context.Context, rawURL, name, dir string, force bool) (File, error) {
	result := File{Name: name}
	target := filepath.Join(dir, filepath.FromSlash(name))

	if !force {
		if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
			result.Paths = []string{target}
			result.Skipped = true
			return result, nil
		}
	}

	staging, err := os.MkdirTemp(dir, ".kaggle-")
	if err != nil {
		return result, errors.Wrap(err, "create staging directory")
	}
	defer os.RemoveAll(staging)

	payload := filepath.Join(staging, "payload")
	if _, err := c.http.Download(ctx, rawURL, payload, httpclient.WithBasicAuth(c.creds.Username, c.creds.Key)); err != nil {
		return result, err
	}

	zipped, err := util.IsZip(payload)
	if err != nil {
		return result, err
	}
	// A file that is itself a .zip is kept as downloaded
	if !zipped || strings.EqualFold(path.Ext(name), ".zip") {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return result, errors.Wrapf(err, "create %s", filepath.Dir(target))
		}
		if err := os.Rename(payload, target); err != nil {
			return result, errors.Wrapf(err, "move download to %s", target)
		}
		result.Paths = []string{target}
		return result, nil
	}

	extracted := filepath.Join(staging, "extract")
	var unzip getter.ZipDecompressor
	if err := unzip.Decompress(extracted, payload, true, 0); err != nil {
		return result, errors.Wrap(err, "extract zip payload")
	}
	paths, err := util.MoveTree(extracted, dir)
	if err != nil {
		return result, err
	}
	result.Paths = paths
	return result, nil
}
