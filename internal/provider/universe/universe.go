// Package universe supplies ticker universes for market scans.
package universe

import (
	"context"
	"strings"

	"github.com/newthinker/pulse/internal/provider"
)

// Default is the fallback universe used when the configured universe source
// fails: a small fixed set of large, liquid US names. A scan over the
// fallback is degraded but still meaningful; failing outright is not.
var Default = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "BRK-B",
	"JPM", "V", "UNH", "XOM", "JNJ", "WMT", "PG", "MA",
	"HD", "CVX", "MRK", "KO", "PEP", "BAC", "COST", "ABBV",
}

// Static serves a fixed symbol list, typically index constituents loaded
// from configuration.
type Static struct {
	name    string
	symbols []string
}

// NewStatic creates a universe from a fixed symbol list. Symbols are
// upper-cased and de-duplicated, preserving first-seen order.
func NewStatic(name string, symbols []string) *Static {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return &Static{name: name, symbols: out}
}

// NewDefault creates the fallback universe.
func NewDefault() *Static {
	return NewStatic("default", Default)
}

func (s *Static) Name() string {
	return s.name
}

// FetchUniverse returns a copy of the symbol list
func (s *Static) FetchUniverse(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}

var _ provider.Universe = (*Static)(nil)
