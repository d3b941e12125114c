package core

import "time"

// PriceBar represents one trading period's OHLCV record
type PriceBar struct {
	Symbol   string
	Interval string // "1d", "1h", "5m"
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
	Time     time.Time
}

// IsValid checks if the bar has required fields
func (b PriceBar) IsValid() bool {
	return b.Symbol != "" && b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0 &&
		b.Volume >= 0 && !b.Time.IsZero()
}

// PriceSeries is a time-ordered sequence of bars for one ticker.
// Timestamps are strictly increasing; gaps (missing trading days) are
// permitted and never filled.
type PriceSeries []PriceBar

// Closes extracts the close prices in order
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high prices in order
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices in order
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// IsOrdered reports whether timestamps are strictly increasing
func (s PriceSeries) IsOrdered() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return false
		}
	}
	return true
}

// Fundamental represents a point-in-time fundamental snapshot
type Fundamental struct {
	Symbol    string
	MarketCap float64
	Date      time.Time
	Source    string
}

// IsValid checks if the fundamental has required fields
func (f Fundamental) IsValid() bool {
	return f.Symbol != "" && !f.Date.IsZero()
}

// ScanCandidate is one ticker's result from a market scan.
// MarketCap is zero until lazily attached during the qualification walk;
// candidates are otherwise never mutated after creation.
type ScanCandidate struct {
	Symbol    string
	Price     float64
	RSI       float64
	MarketCap float64
}

// ScanResult is the terminal output of one scan pass: two capped, ranked
// candidate lists plus the count of tickers that yielded a usable series.
// Immutable once produced; superseded, never merged, by the next pass.
type ScanResult struct {
	Oversold    []ScanCandidate
	Overbought  []ScanCandidate
	Examined    int
	GeneratedAt time.Time
}
