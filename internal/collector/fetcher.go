package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"MarketSignal/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	// FetchCandles returns bars in chronological order.
	FetchCandles(ctx context.Context, symbol, timeframe string) ([]model.Candle, error)
	FetchFundamentals(ctx context.Context, symbol string) (*model.Fundamentals, error)
	FetchNews(ctx context.Context, symbol string) ([]model.NewsItem, error)
	Name() string
}

// ErrNotSupported is returned for data a provider does not serve.
var ErrNotSupported = errors.New("not supported by provider")

// ErrNoData is returned when a provider answers without usable data.
var ErrNoData = errors.New("no data returned")

// APIError represents an error response from a data provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s API error: %s (status %d)", e.Provider, e.Message, e.StatusCode)
}

// IsRateLimited reports whether err is a provider rate-limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests
}

type requestTimeoutKey struct{}

// WithRequestTimeout attaches a per-request timeout to ctx. Fetchers apply it
// to the HTTP exchange only, after any rate-limit wait.
func WithRequestTimeout(ctx context.Context, d time.Duration) context.Context {
	if d <= 0 {
		return ctx
	}
	return context.WithValue(ctx, requestTimeoutKey{}, d)
}

// requestContext bounds ctx by the timeout set with WithRequestTimeout.
func requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d, ok := ctx.Value(requestTimeoutKey{}).(time.Duration); ok && d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
