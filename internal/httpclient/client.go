// Package httpclient is the outbound HTTP client shared by the fetchers. It
// rate-limits in the transport so every consumer of HTTPClient(), including
// go-getter and the Google API clients, is throttled the same way.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/teranos/dugout/errors"
	"github.com/teranos/dugout/logger"
	"github.com/teranos/dugout/sym"
)

// Defaults applied by New for zero-valued Options fields.
const (
	DefaultTimeout           = 60 * time.Second
	DefaultRequestsPerSecond = 2
	DefaultBurst             = 4
	DefaultMaxBodyBytes      = 512 << 20
	DefaultMaxRedirects      = 10
	DefaultUserAgent         = "dugout/dev (+https://github.com/teranos/dugout)"
)

// Options configures a Client.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 uses the default; rate.Inf disables limiting
	Burst             int
	UserAgent         string
	MaxBodyBytes      int64
	MaxRedirects      int
	AllowedSchemes    []string // Default: ["http", "https"]
}

// Client wraps http.Client with rate limiting, scheme checks and bounded reads.
type Client struct {
	http           *http.Client
	allowedSchemes []string
	maxBodyBytes   int64
	maxRedirects   int
}

// RequestOption adjusts an outgoing request.
type RequestOption func(*http.Request)

// WithBasicAuth sets HTTP basic credentials.
func WithBasicAuth(username, password string) RequestOption {
	return func(r *http.Request) { r.SetBasicAuth(username, password) }
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// New creates a client; zero-valued options take the package defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.AllowedSchemes == nil {
		opts.AllowedSchemes = []string{"http", "https"}
	}

	c := &Client{
		allowedSchemes: opts.AllowedSchemes,
		maxBodyBytes:   opts.MaxBodyBytes,
		maxRedirects:   opts.MaxRedirects,
	}
	c.http = &http.Client{
		Timeout: opts.Timeout,
		Transport: &limitedTransport{
			base:      http.DefaultTransport,
			limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
			userAgent: opts.UserAgent,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				return errors.Newf("stopped after %d redirects", c.maxRedirects)
			}
			if err := c.validateURL(req.URL); err != nil {
				return errors.Wrap(err, "redirect blocked")
			}
			return nil
		},
	}
	return c
}

// HTTPClient exposes the underlying client for libraries that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// ValidateURL parses a URL and checks its scheme and host.
func (c *Client) ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidArgument), "invalid URL %q", raw)
	}
	if err := c.validateURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	for _, allowed := range c.allowedSchemes {
		if scheme == allowed {
			if u.Hostname() == "" {
				return errors.NewInvalidArgumentError("URL %q is missing a hostname", u.Redacted())
			}
			return nil
		}
	}
	return errors.NewInvalidArgumentError("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
}

// Do validates the request URL and sends it. The caller owns the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.validateURL(req.URL); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "%s %s", req.Method, req.URL.Redacted())
		}
		var timeout interface{ Timeout() bool }
		if errors.As(err, &timeout) && timeout.Timeout() {
			err = errors.Mark(err, errors.ErrTimeout)
		}
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Redacted())
	}
	logger.Logger.Debugw("HTTP request",
		"symbol", sym.Pulse,
		logger.FieldURL, req.URL.Redacted(),
		"status", resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (c *Client) send(ctx context.Context, rawURL string, opts []RequestOption) (*http.Response, error) {
	if _, err := c.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for _, opt := range opts {
		opt(req)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// Get fetches a URL and returns its body. Non-2xx statuses map through CheckStatus.
func (c *Client) Get(ctx context.Context, rawURL string, opts ...RequestOption) ([]byte, error) {
	resp, err := c.send(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", rawURL)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, errors.Newf("response from %s exceeds %d bytes", rawURL, c.maxBodyBytes)
	}
	return body, nil
}

// Open sends a GET and returns the response once its status is 2xx. The
// caller closes the body.
func (c *Client) Open(ctx context.Context, rawURL string, opts ...RequestOption) (*http.Response, error) {
	return c.send(ctx, rawURL, opts)
}

// Download streams a URL into path and returns the byte count. The file is
// written under a temporary name and renamed when complete.
func (c *Client) Download(ctx context.Context, rawURL, path string, opts ...RequestOption) (int64, error) {
	resp, err := c.send(ctx, rawURL, opts)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return c.Save(resp.Body, rawURL, path)
}

// Save streams body into path the way Download does. rawURL only labels
// errors and logs.
func (c *Client) Save(body io.Reader, rawURL, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.part")
	if err != nil {
		return 0, errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(body, c.maxBodyBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, errors.Wrapf(err, "download %s", rawURL)
	}
	if n > c.maxBodyBytes {
		return 0, errors.Newf("download from %s exceeds %d bytes", rawURL, c.maxBodyBytes)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, errors.Wrapf(err, "move download to %s", path)
	}

	logger.Logger.Infow("Downloaded",
		"symbol", sym.Doc,
		logger.FieldURL, rawURL,
		logger.FieldPath, path,
		logger.FieldBytes, n,
	)
	return n, nil
}

// CheckStatus maps non-2xx responses onto the shared error sentinels.
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	target := "request"
	if resp.Request != nil && resp.Request.URL != nil {
		target = resp.Request.URL.Redacted()
	}
	msg := "%s returned %d %s"
	status := http.StatusText(code)
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewAuthFailureError(msg, target, code, status)
	case http.StatusNotFound:
		return errors.NewNotFoundError(msg, target, code, status)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return errors.NewTimeoutError(msg, target, code, status)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		err := errors.NewServiceUnavailableError(msg, target, code, status)
		if retry := resp.Header.Get("Retry-After"); retry != "" {
			err = errors.WithHintf(err, "server asked to retry after %s", retry)
		}
		return err
	default:
		return errors.Newf(msg, target, code, status)
	}
}

// limitedTransport waits on the limiter and sets the User-Agent.
type limitedTransport struct {
	base      http.RoundTripper
	limiter   *rate.Limiter
	userAgent string
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
