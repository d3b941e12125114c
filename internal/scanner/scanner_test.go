package scanner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/provider/universe"
)

// fakeHistory serves canned series; symbols missing from data are absent
// from the batch, mirroring per-ticker absence inside a successful batch.
type fakeHistory struct {
	data      map[string]core.PriceSeries
	err       error
	requested []string
}

func (f *fakeHistory) Name() string { return "fake-history" }

func (f *fakeHistory) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) (core.PriceSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	series, ok := f.data[symbol]
	if !ok {
		return nil, core.ErrNoData
	}
	return series, nil
}

func (f *fakeHistory) FetchHistoryBatch(ctx context.Context, symbols []string, start, end time.Time, interval string) (map[string]core.PriceSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requested = append([]string(nil), symbols...)
	out := make(map[string]core.PriceSeries)
	for _, s := range symbols {
		if series, ok := f.data[s]; ok {
			out[s] = series
		}
	}
	return out, nil
}

type fakeFundamentals struct {
	caps  map[string]float64
	errs  map[string]error
	calls int32
}

func (f *fakeFundamentals) Name() string { return "fake-fundamentals" }

func (f *fakeFundamentals) FetchMarketCap(ctx context.Context, symbol string) (float64, error) {
	atomic.AddInt32(&f.calls, 1)
	if err, ok := f.errs[symbol]; ok {
		return 0, err
	}
	cap, ok := f.caps[symbol]
	if !ok {
		return 0, core.ErrNoData
	}
	return cap, nil
}

type fakeUniverse struct {
	symbols []string
	err     error
}

func (f *fakeUniverse) Name() string { return "fake-universe" }

func (f *fakeUniverse) FetchUniverse(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.symbols, nil
}

func bars(symbol string, closes []float64) core.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make(core.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = core.PriceBar{
			Symbol: symbol, Interval: "1d",
			Open: c, High: c + 1, Low: c - 1, Close: c,
			Volume: 1000, Time: base.AddDate(0, 0, i),
		}
	}
	return series
}

func rising(symbol string, n int) core.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return bars(symbol, closes)
}

func falling(symbol string, n int) core.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	return bars(symbol, closes)
}

func flat(symbol string, n int) core.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 50
	}
	return bars(symbol, closes)
}

func newTestScanner(h *fakeHistory, f *fakeFundamentals, u *fakeUniverse, cfg Config) *Scanner {
	return New(h, f, u, cfg, nil)
}

func TestScan_TwoSidedRanking(t *testing.T) {
	// Two strictly rising tickers (RSI 100) and one strictly falling
	// (RSI 0): exactly one oversold, two overbought, correctly ordered
	history := &fakeHistory{data: map[string]core.PriceSeries{
		"UPA":  rising("UPA", 60),
		"UPB":  rising("UPB", 60),
		"DOWN": falling("DOWN", 60),
	}}
	funds := &fakeFundamentals{caps: map[string]float64{
		"UPA": 5e9, "UPB": 3e9, "DOWN": 8e9,
	}}
	uni := &fakeUniverse{symbols: []string{"UPA", "UPB", "DOWN"}}

	s := newTestScanner(history, funds, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Examined)

	require.Len(t, result.Oversold, 1)
	assert.Equal(t, "DOWN", result.Oversold[0].Symbol)
	assert.Equal(t, 0.0, result.Oversold[0].RSI)
	assert.Equal(t, 8e9, result.Oversold[0].MarketCap)

	require.Len(t, result.Overbought, 2)
	// Both at RSI 100: symbol tiebreak keeps ordering deterministic
	assert.Equal(t, "UPA", result.Overbought[0].Symbol)
	assert.Equal(t, "UPB", result.Overbought[1].Symbol)
	assert.Equal(t, 100.0, result.Overbought[0].RSI)
}

func TestScan_BatchFailureIsFatal(t *testing.T) {
	history := &fakeHistory{err: errors.New("network down")}
	s := newTestScanner(history, &fakeFundamentals{}, &fakeUniverse{symbols: []string{"AAPL"}}, DefaultConfig())

	result, err := s.Scan(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrScanUnavailable)
}

func TestScan_PerTickerFailureIsolated(t *testing.T) {
	// GONE is in the universe but absent from the batch: the scan completes
	// and the examined count excludes it
	history := &fakeHistory{data: map[string]core.PriceSeries{
		"DOWN": falling("DOWN", 60),
	}}
	funds := &fakeFundamentals{caps: map[string]float64{"DOWN": 1e9}}
	uni := &fakeUniverse{symbols: []string{"GONE", "DOWN"}}

	s := newTestScanner(history, funds, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Examined)
	require.Len(t, result.Oversold, 1)
	assert.Equal(t, "DOWN", result.Oversold[0].Symbol)
}

func TestScan_ShortSeriesSkipped(t *testing.T) {
	history := &fakeHistory{data: map[string]core.PriceSeries{
		"SHORT": falling("SHORT", 10), // below the 15-bar scan floor
		"DOWN":  falling("DOWN", 20),
	}}
	funds := &fakeFundamentals{caps: map[string]float64{"SHORT": 1e9, "DOWN": 1e9}}
	uni := &fakeUniverse{symbols: []string{"SHORT", "DOWN"}}

	s := newTestScanner(history, funds, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Examined)
	require.Len(t, result.Oversold, 1)
	assert.Equal(t, "DOWN", result.Oversold[0].Symbol)
}

func TestScan_FlatSeriesReadsOverbought(t *testing.T) {
	// Zero-volatility series resolves to RSI 100 via the loss=0 rule and
	// lands on the overbought side, never a NaN skip
	history := &fakeHistory{data: map[string]core.PriceSeries{
		"FLAT": flat("FLAT", 20),
	}}
	funds := &fakeFundamentals{caps: map[string]float64{"FLAT": 2e9}}
	uni := &fakeUniverse{symbols: []string{"FLAT"}}

	s := newTestScanner(history, funds, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Examined)
	assert.Empty(t, result.Oversold)
	require.Len(t, result.Overbought, 1)
	assert.Equal(t, 100.0, result.Overbought[0].RSI)
}

func TestScan_MarketCapFloor(t *testing.T) {
	history := &fakeHistory{data: map[string]core.PriceSeries{
		"BIG":   falling("BIG", 60),
		"SMALL": falling("SMALL", 60),
		"ERR":   falling("ERR", 60),
	}}
	funds := &fakeFundamentals{
		caps: map[string]float64{
			"BIG":   50_000_000,
			"SMALL": 10_000_000, // at the floor: must be strictly greater
		},
		errs: map[string]error{"ERR": errors.New("rate limited")},
	}
	uni := &fakeUniverse{symbols: []string{"BIG", "SMALL", "ERR"}}

	s := newTestScanner(history, funds, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	// All three examined; only BIG survives the cap filter
	assert.Equal(t, 3, result.Examined)
	require.Len(t, result.Oversold, 1)
	assert.Equal(t, "BIG", result.Oversold[0].Symbol)
	assert.Equal(t, 50_000_000.0, result.Oversold[0].MarketCap)
}

func TestScan_CapsAtMaxResults(t *testing.T) {
	history := &fakeHistory{data: map[string]core.PriceSeries{}}
	funds := &fakeFundamentals{caps: map[string]float64{}}
	symbols := make([]string, 0, 15)
	for _, r := range "ABCDEFGHIJKLMNO" {
		sym := "T" + string(r)
		symbols = append(symbols, sym)
		history.data[sym] = falling(sym, 60)
		funds.caps[sym] = 1e9
	}
	uni := &fakeUniverse{symbols: symbols}

	s := newTestScanner(history, funds, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 15, result.Examined)
	assert.Len(t, result.Oversold, 10)

	// Ascending RSI with symbol tiebreak
	for i := 1; i < len(result.Oversold); i++ {
		prev, curr := result.Oversold[i-1], result.Oversold[i]
		if prev.RSI == curr.RSI {
			assert.Less(t, prev.Symbol, curr.Symbol)
		} else {
			assert.Less(t, prev.RSI, curr.RSI)
		}
	}
}

func TestScan_LazyMarketCapFetches(t *testing.T) {
	// With the cap already reachable inside the first window, candidates
	// beyond it must not cost fundamentals calls
	history := &fakeHistory{data: map[string]core.PriceSeries{}}
	funds := &fakeFundamentals{caps: map[string]float64{}}
	symbols := make([]string, 0, 8)
	for _, r := range "ABCDEFGH" {
		sym := "T" + string(r)
		symbols = append(symbols, sym)
		history.data[sym] = falling(sym, 60)
		funds.caps[sym] = 1e9
	}
	uni := &fakeUniverse{symbols: symbols}

	cfg := DefaultConfig()
	cfg.MaxResults = 1
	cfg.FetchWorkers = 2

	s := newTestScanner(history, funds, uni, cfg)
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Oversold, 1)
	assert.LessOrEqual(t, atomic.LoadInt32(&funds.calls), int32(2),
		"should fetch at most one window of market caps")
}

func TestScan_UniverseFallback(t *testing.T) {
	history := &fakeHistory{data: map[string]core.PriceSeries{}}
	uni := &fakeUniverse{err: errors.New("index feed down")}

	s := newTestScanner(history, &fakeFundamentals{}, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	// The batch request went out against the fixed default universe
	assert.Equal(t, universe.Default, history.requested)
	assert.Equal(t, 0, result.Examined)
	assert.Empty(t, result.Oversold)
	assert.Empty(t, result.Overbought)
}

func TestScan_OverboughtDescending(t *testing.T) {
	// Mixed RSI levels on the overbought side must rank highest first
	closes := func(last3 float64) []float64 {
		// 20 rising bars with a tail nudge to vary the RSI slightly
		out := make([]float64, 20)
		for i := range out {
			out[i] = 100 + float64(i)
		}
		out[len(out)-1] -= last3
		return out
	}

	history := &fakeHistory{data: map[string]core.PriceSeries{
		"PURE": rising("PURE", 20),        // RSI 100
		"DIP":  bars("DIP", closes(1.5)),  // one small loss: RSI < 100
		"DIP2": bars("DIP2", closes(2.2)), // larger loss: even lower RSI
	}}
	funds := &fakeFundamentals{caps: map[string]float64{
		"PURE": 1e9, "DIP": 1e9, "DIP2": 1e9,
	}}
	uni := &fakeUniverse{symbols: []string{"DIP2", "PURE", "DIP"}}

	s := newTestScanner(history, funds, uni, DefaultConfig())
	result, err := s.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Overbought, 3)
	assert.Equal(t, "PURE", result.Overbought[0].Symbol)
	assert.Equal(t, "DIP", result.Overbought[1].Symbol)
	assert.Equal(t, "DIP2", result.Overbought[2].Symbol)
	assert.GreaterOrEqual(t, result.Overbought[0].RSI, result.Overbought[1].RSI)
	assert.GreaterOrEqual(t, result.Overbought[1].RSI, result.Overbought[2].RSI)
}
