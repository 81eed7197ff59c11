package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON-encodable values by key.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SignalKey is the key of a cached analysis result.
func SignalKey(symbol, timeframe string) string {
	return fmt.Sprintf("signal:%s:%s", strings.ToUpper(symbol), timeframe)
}

// PatternsKey is the key of a cached pattern list. Patterns depend on the
// trend of the candles as well as on symbol and timeframe.
func PatternsKey(symbol, timeframe string, bullish bool) string {
	trend := "bearish"
	if bullish {
		trend = "bullish"
	}
	return fmt.Sprintf("patterns:%s:%s:%s", strings.ToUpper(symbol), timeframe, trend)
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string, interface{}) error { return ErrMiss }

func (NoopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }

func (NoopCache) Close() error { return nil }
