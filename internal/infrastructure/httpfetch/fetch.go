package httpfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// FetchError - network failure, timeout or non-2xx answer after the retry budget is spent
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Options - retry budget and transport settings of a Fetcher
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
	UserAgent   string
}

// Fetcher issues GET requests with bounded retries and exponential backoff.
// Connection errors and 500/502/503/504 are retried, any other status is final.
type Fetcher struct {
	client    *retryablehttp.Client
	userAgent string
	logger    *zap.Logger
}

// New creates a Fetcher.
func New(opts Options, logger *zap.Logger) *Fetcher {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{Timeout: opts.Timeout}
	client.RetryMax = attempts - 1
	client.RetryWaitMin = opts.BackoffMin
	client.RetryWaitMax = opts.BackoffMax
	client.CheckRetry = checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = &leveledLogger{logger: logger}

	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Get fetches rawURL with params and returns the response body.
func (f *Fetcher) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	target := rawURL
	if len(params) > 0 {
		target = rawURL + "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("Fetch failed", zap.String("url", rawURL), zap.Error(err))
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn("Fetch returned error status",
			zap.String("url", rawURL),
			zap.Int("status_code", resp.StatusCode))
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	return body, nil
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (f *Fetcher) GetJSON(ctx context.Context, rawURL string, params url.Values, v interface{}) error {
	body, err := f.Get(ctx, rawURL, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// leveledLogger routes retryablehttp logs into zap
type leveledLogger struct {
	logger *zap.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Warnw(msg, keysAndValues...)
}
