// Package yahoo implements the Yahoo Finance history and fundamentals
// providers on the public chart and quoteSummary endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/provider"
)

const (
	chartBaseURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	summaryBaseURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"

	defaultTimeout = 10 * time.Second

	// batchWorkers bounds the per-symbol fan-out of a batch history fetch.
	batchWorkers = 8
)

// validSymbol matches stock symbols like AAPL, MSFT, BRK-B, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}([.\-][A-Za-z]{1,4})?$`)

func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Client implements the Yahoo Finance provider. It satisfies both
// provider.History and provider.Fundamentals.
type Client struct {
	client     *http.Client
	config     provider.Config
	chartURL   string
	summaryURL string
}

// New creates a new Yahoo client
func New() *Client {
	return &Client{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		chartURL:   chartBaseURL,
		summaryURL: summaryBaseURL,
	}
}

// NewWithConfig creates a Yahoo client with explicit configuration
func NewWithConfig(cfg provider.Config) *Client {
	c := New()
	c.config = cfg
	if cfg.Timeout > 0 {
		c.client.Timeout = cfg.Timeout
	}
	return c
}

func (c *Client) Name() string {
	return "yahoo"
}

// FetchHistory fetches historical OHLCV data for one symbol
func (c *Client) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) (core.PriceSeries, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?interval=%s&period1=%d&period2=%d",
		c.chartURL, symbol, toYahooInterval(interval), start.Unix(), end.Unix())

	var result chartResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no chart data for %s", symbol))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no quote data for %s", symbol))
	}
	quotes := r.Indicators.Quote[0]

	series := make(core.PriceSeries, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quotes.Open) || i >= len(quotes.High) || i >= len(quotes.Low) ||
			i >= len(quotes.Close) || i >= len(quotes.Volume) {
			continue // ragged payload
		}
		if quotes.Open[i] == nil || quotes.High[i] == nil ||
			quotes.Low[i] == nil || quotes.Close[i] == nil || quotes.Volume[i] == nil {
			continue // skip missing data
		}
		series = append(series, core.PriceBar{
			Symbol:   symbol,
			Interval: interval,
			Open:     *quotes.Open[i],
			High:     *quotes.High[i],
			Low:      *quotes.Low[i],
			Close:    *quotes.Close[i],
			Volume:   int64(*quotes.Volume[i]),
			Time:     time.Unix(int64(ts), 0),
		})
	}

	return series, nil
}

// FetchHistoryBatch fans out per-symbol chart requests under a bounded worker
// pool. Symbols that fail are simply absent from the returned map; the batch
// itself only fails when no symbol could be retrieved.
func (c *Client) FetchHistoryBatch(ctx context.Context, symbols []string, start, end time.Time, interval string) (map[string]core.PriceSeries, error) {
	if len(symbols) == 0 {
		return map[string]core.PriceSeries{}, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]core.PriceSeries, len(symbols))
		lastErr error
	)

	sem := make(chan struct{}, batchWorkers)
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			series, err := c.FetchHistory(ctx, symbol, start, end, interval)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				return
			}
			if len(series) > 0 {
				results[symbol] = series
			}
		}(symbol)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(results) == 0 && lastErr != nil {
		return nil, core.WrapError(core.ErrProviderFailed, lastErr)
	}
	return results, nil
}

// FetchMarketCap fetches a symbol's market capitalization from the
// quoteSummary price module
func (c *Client) FetchMarketCap(ctx context.Context, symbol string) (float64, error) {
	if err := validateSymbol(symbol); err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/%s?modules=price", c.summaryURL, symbol)

	var result summaryResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return 0, fmt.Errorf("fetching market cap: %w", err)
	}

	if result.QuoteSummary.Error != nil {
		return 0, fmt.Errorf("yahoo error: %s", result.QuoteSummary.Error.Description)
	}
	if len(result.QuoteSummary.Result) == 0 {
		return 0, core.WrapError(core.ErrNoData, fmt.Errorf("no summary for %s", symbol))
	}

	mcap := result.QuoteSummary.Result[0].Price.MarketCap
	if mcap.Raw == nil {
		return 0, core.WrapError(core.ErrNoData, fmt.Errorf("no market cap for %s", symbol))
	}
	return *mcap.Raw, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "pulse/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func toYahooInterval(interval string) string {
	switch interval {
	case "1m", "5m", "1h", "1d", "1wk", "1mo":
		return interval
	default:
		return "1d"
	}
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int `json:"timestamp"`
	Indicators struct {
		Quote []quoteIndicator `json:"quote"`
	} `json:"indicators"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				MarketCap struct {
					Raw *float64 `json:"raw"`
				} `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
