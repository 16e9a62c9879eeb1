package scrape

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Fetcher performs HTTP GETs against the target site.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeouts, transport) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Fetcher struct {
	// client is the underlying HTTP client.
	client *http.Client

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the response body size to prevent memory
	// exhaustion from unexpectedly large responses.
	maxBodySize int64

	// attempts is the total number of tries per URL, including the
	// first. Transient failures retry with a fixed backoff; a value of
	// 1 disables retrying.
	attempts int

	// retryDelay is the fixed backoff between attempts.
	retryDelay time.Duration

	// headers are extra request headers (e.g. from per-source config).
	headers map[string]string

	// cookie is an optional Cookie header value.
	cookie string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithRetry sets the total attempt count and the fixed delay between
// attempts. Attempts below 1 are treated as 1.
func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if attempts < 1 {
			attempts = 1
		}
		f.attempts = attempts
		f.retryDelay = delay
	}
}

// WithHeaders sets extra request headers sent with every fetch.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets the Cookie header sent with every fetch.
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// NewFetcher creates a Fetcher around the given HTTP client.
// The client carries the request timeout; pass nil for a default client
// with a 30 second timeout.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	f := &Fetcher{
		client: client,
		// A browser User-Agent: the listing endpoint serves different
		// markup to obvious bots.
		userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		attempts:    3,
		retryDelay:  2 * time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch issues a GET for the URL and returns the response body.
//
// Transport errors and retryable statuses (5xx, 429) are retried up to
// the configured attempt count with a fixed backoff. Client errors (4xx
// other than 429) fail immediately: retrying a 404 only delays the
// scheduler's failure report. All failures return *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr *FetchError

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, &FetchError{URL: url, Attempts: attempt - 1, Err: ctx.Err()}
			case <-time.After(f.retryDelay):
			}
		}

		body, ferr := f.fetchOnce(ctx, url)
		if ferr == nil {
			return body, nil
		}
		ferr.Attempts = attempt
		lastErr = ferr

		if !retryable(ferr) {
			return nil, ferr
		}
	}

	return nil, lastErr
}

// fetchOnce performs a single GET without retrying.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return body, nil
}

// retryable reports whether the failure is worth another attempt.
// Transport errors and server-side statuses are transient; other client
// errors are not.
func retryable(e *FetchError) bool {
	if e.Err != nil {
		if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
			return false
		}
		return true
	}
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
