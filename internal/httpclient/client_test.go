package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/teranos/dugout/errors"
)

func TestNewAppliesDefaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, DefaultTimeout, c.HTTPClient().Timeout)
	assert.EqualValues(t, DefaultMaxBodyBytes, c.maxBodyBytes)
	assert.Equal(t, []string{"http", "https"}, c.allowedSchemes)
}

func TestValidateURL(t *testing.T) {
	c := New(Options{})
	tests := []struct {
		name      string
		url       string
		shouldErr bool
	}{
		{"https", "https://www.retrosheet.org/gamelogs/index.html", false},
		{"http", "http://example.com", false},
		{"file scheme", "file:///etc/passwd", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"no host", "https:///path", true},
		{"unparseable", "http://[::1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ValidateURL(tt.url)
			if tt.shouldErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidArgument(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetSetsUserAgentAndOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ := r.BasicAuth()
		w.Write([]byte(r.UserAgent() + "|" + user + ":" + pass + "|" + r.Header.Get("Accept")))
	}))
	defer srv.Close()

	c := New(Options{UserAgent: "dugout-test", RequestsPerSecond: float64(rate.Inf)})
	body, err := c.Get(context.Background(), srv.URL, WithBasicAuth("me", "secret"), WithHeader("Accept", "text/csv"))
	require.NoError(t, err)
	assert.Equal(t, "dugout-test|me:secret|text/csv", string(body))
}

func TestCheckStatusMapping(t *testing.T) {
	tests := []struct {
		code  int
		check func(error) bool
	}{
		{http.StatusUnauthorized, errors.IsAuthFailure},
		{http.StatusForbidden, errors.IsAuthFailure},
		{http.StatusNotFound, errors.IsNotFound},
		{http.StatusRequestTimeout, errors.IsTimeout},
		{http.StatusGatewayTimeout, errors.IsTimeout},
		{http.StatusTooManyRequests, errors.IsServiceUnavailable},
		{http.StatusServiceUnavailable, errors.IsServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			_, err := New(Options{RequestsPerSecond: float64(rate.Inf)}).Get(context.Background(), srv.URL)
			require.Error(t, err)
			assert.True(t, tt.check(err), "status %d mapped to %v", tt.code, err)
		})
	}

	t.Run("other statuses are plain errors", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusTeapot, Header: http.Header{}}
		err := CheckStatus(resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "418")
		assert.False(t, errors.IsNotFound(err))
	})

	t.Run("retry-after becomes a hint", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"30"}}}
		err := CheckStatus(resp)
		assert.Contains(t, errors.FlattenHints(err), "30")
	})

	assert.NoError(t, CheckStatus(&http.Response{StatusCode: http.StatusNoContent}))
}

func TestMaxBodyBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	c := New(Options{MaxBodyBytes: 5, RequestsPerSecond: float64(rate.Inf)})
	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")

	_, err = c.Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "big.bin"))
	assert.Error(t, err)
}

func TestDownloadWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Season,Name\n2022,Judge\n"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "leaders.csv")
	n, err := New(Options{RequestsPerSecond: float64(rate.Inf)}).Download(context.Background(), srv.URL, dest)
	require.NoError(t, err)
	assert.EqualValues(t, 23, n)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "Season,Name\n2022,Judge\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be cleaned up")
}

func TestOpenThenSave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()
	c := New(Options{RequestsPerSecond: float64(rate.Inf)})

	_, err := c.Open(context.Background(), srv.URL+"/missing")
	assert.True(t, errors.IsNotFound(err))

	resp, err := c.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	dest := filepath.Join(t.TempDir(), "out.csv")
	n, err := c.Save(resp.Body, srv.URL, dest)
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestRateLimiterThrottles(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(Options{RequestsPerSecond: 10, Burst: 1})
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.EqualValues(t, 3, hits.Load())
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Get(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRedirectToDisallowedScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "ftp://example.com/file", http.StatusFound)
	}))
	defer srv.Close()

	_, err := New(Options{RequestsPerSecond: float64(rate.Inf)}).Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect blocked")
}
