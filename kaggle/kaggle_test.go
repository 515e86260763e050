package kaggle

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/teranos/dugout/am"
	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/internal/httpclient"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type fakeKaggle struct {
	srv   *httptest.Server
	hits  atomic.Int32
	paths []string
}

func newFakeKaggle(t *testing.T, routes map[string][]byte) *fakeKaggle {
	t.Helper()
	f := &fakeKaggle{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		user, key, ok := r.BasicAuth()
		if !ok || user != "ann" || key != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, found := routes[r.URL.Path]
		if !found {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeKaggle) client(t *testing.T, creds Credentials) *Client {
	t.Helper()
	hc := httpclient.New(httpclient.Options{RequestsPerSecond: float64(rate.Inf)})
	c, err := NewClient(creds, hc, f.srv.URL+"/api/v1/", nil)
	require.NoError(t, err)
	return c
}

var good = Credentials{Username: "ann", Key: "secret"}

func TestDownloadDatasetFiles(t *testing.T) {
	fake := newFakeKaggle(t, map[string][]byte{
		"/api/v1/datasets/download/seanlahman/the-history-of-baseball/team.csv": []byte("year,team\n2016,NYA\n"),
		"/api/v1/datasets/download/seanlahman/the-history-of-baseball/player.csv": zipBytes(t, map[string]string{
			"player.csv": "id,name\n1,Babe Ruth\n",
		}),
	})
	dir := filepath.Join(t.TempDir(), "out")
	c := fake.client(t, good)

	files, err := c.DownloadDatasetFiles(context.Background(), "seanlahman/the-history-of-baseball", []string{"team.csv", "player.csv"}, dir, false)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, []string{filepath.Join(dir, "team.csv")}, files[0].Paths)
	assert.False(t, files[0].Skipped)
	data, err := os.ReadFile(filepath.Join(dir, "team.csv"))
	require.NoError(t, err)
	assert.Equal(t, "year,team\n2016,NYA\n", string(data))

	// Zipped payloads are extracted in place
	assert.Equal(t, []string{filepath.Join(dir, "player.csv")}, files[1].Paths)
	data, err = os.ReadFile(filepath.Join(dir, "player.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Babe Ruth\n", string(data))

	// No staging leftovers
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDownloadDatasetFiles_SkipsExisting(t *testing.T) {
	fake := newFakeKaggle(t, map[string][]byte{
		"/api/v1/datasets/download/o/d/a.csv": []byte("new"),
	})
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("old"), 0o644))
	c := fake.client(t, good)

	files, err := c.DownloadDatasetFiles(context.Background(), "o/d", []string{"a.csv"}, dir, false)
	require.NoError(t, err)
	assert.True(t, files[0].Skipped)
	assert.Equal(t, int32(0), fake.hits.Load(), "no request for an existing file")

	files, err = c.DownloadDatasetFiles(context.Background(), "o/d", []string{"a.csv"}, dir, true)
	require.NoError(t, err)
	assert.False(t, files[0].Skipped)
	data, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDownloadDatasetFiles_KeepsRequestedZip(t *testing.T) {
	archive := zipBytes(t, map[string]string{"inner.csv": "x\n"})
	fake := newFakeKaggle(t, map[string][]byte{
		"/api/v1/datasets/download/o/d/bundle.zip": archive,
	})
	dir := t.TempDir()

	files, err := fake.client(t, good).DownloadDatasetFiles(context.Background(), "o/d", []string{"bundle.zip"}, dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "bundle.zip")}, files[0].Paths)
	assert.NoFileExists(t, filepath.Join(dir, "inner.csv"))
}

func TestDownloadCompetitionFiles(t *testing.T) {
	fake := newFakeKaggle(t, map[string][]byte{
		"/api/v1/competitions/data/download/mlb-player-digital-engagement/train.csv": zipBytes(t, map[string]string{
			"train.csv": "date,playerId\n",
		}),
	})
	dir := t.TempDir()

	files, err := fake.client(t, good).DownloadCompetitionFiles(context.Background(), "mlb-player-digital-engagement", []string{"train.csv"}, dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "train.csv")}, files[0].Paths)
}

func TestDownload_Errors(t *testing.T) {
	fake := newFakeKaggle(t, map[string][]byte{})
	dir := t.TempDir()
	ctx := context.Background()

	_, err := fake.client(t, good).DownloadDatasetFiles(ctx, "not-a-ref", []string{"a.csv"}, dir, false)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = fake.client(t, good).DownloadDatasetFiles(ctx, "o/d", nil, dir, false)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = fake.client(t, good).DownloadDatasetFiles(ctx, "o/d", []string{"../escape.csv"}, dir, false)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = fake.client(t, good).DownloadCompetitionFiles(ctx, "has/slash", []string{"a.csv"}, dir, false)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	_, err = fake.client(t, good).DownloadDatasetFiles(ctx, "o/d", []string{"missing.csv"}, dir, false)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = fake.client(t, Credentials{Username: "ann", Key: "wrong"}).DownloadDatasetFiles(ctx, "o/d", []string{"a.csv"}, dir, false)
	assert.True(t, errors.Is(err, errors.ErrAuthFailure))
}

func TestNewClient_Validation(t *testing.T) {
	hc := httpclient.New(httpclient.Options{})

	_, err := NewClient(Credentials{Username: "ann"}, hc, "", nil)
	assert.True(t, errors.Is(err, errors.ErrAuthFailure))

	_, err = NewClient(good, nil, "", nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))

	c, err := NewClient(good, hc, "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
}

func TestResolveCredentials(t *testing.T) {
	dir := t.TempDir()
	orig := credentialsDir
	credentialsDir = func() string { return dir }
	t.Cleanup(func() { credentialsDir = orig })

	t.Run("config wins", func(t *testing.T) {
		creds, err := ResolveCredentials(am.KaggleConfig{Username: "cfg", Key: "k"})
		require.NoError(t, err)
		assert.Equal(t, Credentials{Username: "cfg", Key: "k"}, creds)
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := ResolveCredentials(am.KaggleConfig{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrAuthFailure))
		assert.NotEmpty(t, errors.GetAllHints(err))
	})

	t.Run("kaggle.json fallback", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "kaggle.json"), []byte(`{"username":"file","key":"fk"}`), 0o600))
		creds, err := ResolveCredentials(am.KaggleConfig{Username: "only-half"})
		require.NoError(t, err)
		assert.Equal(t, Credentials{Username: "file", Key: "fk"}, creds)
	})

	t.Run("broken kaggle.json", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "kaggle.json"), []byte(`{"username":`), 0o600))
		_, err := ResolveCredentials(am.KaggleConfig{})
		assert.True(t, errors.Is(err, errors.ErrAuthFailure))
	})

	t.Run("incomplete kaggle.json", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "kaggle.json"), []byte(`{"username":"file"}`), 0o600))
		_, err := ResolveCredentials(am.KaggleConfig{})
		assert.True(t, errors.Is(err, errors.ErrAuthFailure))
	})
}
