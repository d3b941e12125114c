// Package scanner runs rolling RSI market scans over a ticker universe and
// ranks the results into capped oversold and overbought candidate lists.
package scanner

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/indicator"
	"github.com/newthinker/pulse/internal/metrics"
	"github.com/newthinker/pulse/internal/provider"
	"github.com/newthinker/pulse/internal/provider/universe"
)

// Config holds scanner parameters
type Config struct {
	LookbackDays    int     // price history window for the batch fetch
	MinBars         int     // usable-series floor; the scanner only needs RSI
	OversoldBelow   float64 // RSI threshold for the oversold list
	OverboughtAbove float64 // RSI threshold for the overbought list
	MarketCapFloor  float64 // candidates must exceed this, strictly
	MaxResults      int     // cap per list
	FetchWorkers    int     // concurrency of the market-cap stage
}

// DefaultConfig returns the standard scan parameters
func DefaultConfig() Config {
	return Config{
		LookbackDays:    180,
		MinBars:         15,
		OversoldBelow:   30,
		OverboughtAbove: 70,
		MarketCapFloor:  10_000_000,
		MaxResults:      10,
		FetchWorkers:    4,
	}
}

// Scanner produces ScanResults from a ticker universe. It holds no state
// across scans; every pass starts from a fresh universe retrieval.
type Scanner struct {
	history      provider.History
	fundamentals provider.Fundamentals
	universe     provider.Universe
	cfg          Config
	logger       *zap.Logger
	metrics      *metrics.Registry
}

// New creates a scanner wired to its providers
func New(history provider.History, fundamentals provider.Fundamentals, u provider.Universe, cfg Config, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		history:      history,
		fundamentals: fundamentals,
		universe:     u,
		cfg:          cfg,
		logger:       logger,
	}
}

// SetMetrics attaches an optional metrics registry
func (s *Scanner) SetMetrics(m *metrics.Registry) {
	s.metrics = m
}

// Scan executes one full scan pass. A single ticker's data problems never
// abort the scan; the only fatal failure is the universe-wide price history
// retrieval, surfaced as ErrScanUnavailable so the caller can distinguish
// "scan could not run" from "no candidates found".
func (s *Scanner) Scan(ctx context.Context) (*core.ScanResult, error) {
	started := time.Now()

	symbols := s.fetchUniverse(ctx)

	end := time.Now()
	start := end.AddDate(0, 0, -s.cfg.LookbackDays)

	histories, err := s.history.FetchHistoryBatch(ctx, symbols, start, end, "1d")
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordProviderError(s.history.Name())
		}
		return nil, core.WrapError(core.ErrScanUnavailable, err)
	}

	examined := 0
	var oversold, overbought []core.ScanCandidate

	for _, symbol := range symbols {
		series, ok := histories[symbol]
		if !ok || len(series) < s.cfg.MinBars {
			s.logger.Debug("skipping symbol",
				zap.String("symbol", symbol),
				zap.Int("bars", len(series)),
			)
			continue
		}

		closes := series.Closes()
		rsi := indicator.LatestRSI(closes)
		if !rsi.IsFinite() {
			s.logger.Debug("skipping symbol, no usable RSI", zap.String("symbol", symbol))
			continue
		}
		examined++

		candidate := core.ScanCandidate{
			Symbol: symbol,
			Price:  closes[len(closes)-1],
			RSI:    rsi.Float64,
		}

		switch {
		case rsi.Float64 < s.cfg.OversoldBelow:
			oversold = append(oversold, candidate)
		case rsi.Float64 > s.cfg.OverboughtAbove:
			overbought = append(overbought, candidate)
		}
	}

	// Ranking depends only on RSI (symbol as tiebreak for reproducibility),
	// never on fetch completion order.
	sortCandidates(oversold, true)
	sortCandidates(overbought, false)

	result := &core.ScanResult{
		Oversold:    s.qualify(ctx, oversold),
		Overbought:  s.qualify(ctx, overbought),
		Examined:    examined,
		GeneratedAt: time.Now(),
	}

	if s.metrics != nil {
		s.metrics.RecordScan(time.Since(started).Seconds(),
			examined, len(result.Oversold), len(result.Overbought))
	}

	s.logger.Info("scan complete",
		zap.Int("universe", len(symbols)),
		zap.Int("examined", examined),
		zap.Int("oversold", len(result.Oversold)),
		zap.Int("overbought", len(result.Overbought)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return result, nil
}

// fetchUniverse retrieves the ticker universe, falling back to the fixed
// default list rather than failing the scan.
func (s *Scanner) fetchUniverse(ctx context.Context) []string {
	symbols, err := s.universe.FetchUniverse(ctx)
	if err != nil || len(symbols) == 0 {
		s.logger.Warn("universe provider failed, using default universe",
			zap.String("provider", s.universe.Name()),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordProviderError(s.universe.Name())
		}
		return append([]string(nil), universe.Default...)
	}
	return symbols
}

// sortCandidates orders a list by RSI, ascending for the oversold side and
// descending for the overbought side, with symbol as a deterministic tiebreak.
func sortCandidates(list []core.ScanCandidate, ascending bool) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].RSI != list[j].RSI {
			if ascending {
				return list[i].RSI < list[j].RSI
			}
			return list[i].RSI > list[j].RSI
		}
		return list[i].Symbol < list[j].Symbol
	})
}
