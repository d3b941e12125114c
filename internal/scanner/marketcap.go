package scanner

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/newthinker/pulse/internal/core"
)

// qualify walks a ranked candidate list, lazily attaching market caps and
// keeping candidates whose cap strictly exceeds the floor, until MaxResults
// have been collected. Fetches run concurrently in rank-ordered windows of
// FetchWorkers, but the qualification walk itself is strictly rank-ordered,
// so the output never depends on fetch completion order. Windowing also
// bounds the fundamentals calls to roughly what the cap needs instead of
// fetching the whole filtered set.
func (s *Scanner) qualify(ctx context.Context, ranked []core.ScanCandidate) []core.ScanCandidate {
	qualified := make([]core.ScanCandidate, 0, s.cfg.MaxResults)
	window := s.cfg.FetchWorkers
	if window < 1 {
		window = 1
	}

	for lo := 0; lo < len(ranked) && len(qualified) < s.cfg.MaxResults; lo += window {
		if ctx.Err() != nil {
			break
		}

		hi := lo + window
		if hi > len(ranked) {
			hi = len(ranked)
		}

		caps := s.fetchCapsWindow(ctx, ranked[lo:hi])

		for i, candidate := range ranked[lo:hi] {
			if len(qualified) >= s.cfg.MaxResults {
				break
			}
			mcap, ok := caps[i]
			if !ok {
				// Transient fundamentals failure: skip the candidate, the
				// scan continues.
				continue
			}
			if mcap <= s.cfg.MarketCapFloor {
				continue
			}
			candidate.MarketCap = mcap
			qualified = append(qualified, candidate)
		}
	}

	return qualified
}

// fetchCapsWindow fetches market caps for one window of candidates
// concurrently, keyed by position within the window.
func (s *Scanner) fetchCapsWindow(ctx context.Context, window []core.ScanCandidate) map[int]float64 {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		caps = make(map[int]float64, len(window))
	)

	for i, candidate := range window {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()

			mcap, err := s.fundamentals.FetchMarketCap(ctx, symbol)
			if err != nil {
				s.logger.Debug("market cap fetch failed",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
				if s.metrics != nil {
					s.metrics.RecordProviderError(s.fundamentals.Name())
				}
				return
			}

			mu.Lock()
			caps[i] = mcap
			mu.Unlock()
		}(i, candidate.Symbol)
	}
	wg.Wait()

	return caps
}
