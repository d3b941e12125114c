package provider

import (
	"context"
	"time"

	"github.com/newthinker/pulse/internal/core"
)

// Config holds provider configuration
type Config struct {
	Enabled bool
	APIKey  string
	Timeout time.Duration
	Extra   map[string]any
}

// History is a price-history provider.
type History interface {
	Name() string

	// FetchHistory retrieves one ticker's bars for the given window.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) (core.PriceSeries, error)

	// FetchHistoryBatch retrieves bars for a universe of tickers. Individual
	// tickers may be absent from the returned map without failing the batch;
	// an error means the batch as a whole could not be retrieved.
	FetchHistoryBatch(ctx context.Context, symbols []string, start, end time.Time, interval string) (map[string]core.PriceSeries, error)
}

// Fundamentals is a fundamental-data provider.
type Fundamentals interface {
	Name() string

	// FetchMarketCap returns a ticker's market capitalization, or
	// core.ErrNoData when the provider has no figure for it.
	FetchMarketCap(ctx context.Context, symbol string) (float64, error)
}

// Universe supplies the ticker universe for a scan, typically a broad-market
// index constituent list.
type Universe interface {
	Name() string
	FetchUniverse(ctx context.Context) ([]string, error)
}
