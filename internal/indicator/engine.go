package indicator

import (
	"time"

	"github.com/newthinker/pulse/internal/core"
)

// Engine parameters
const (
	// MinBars is the floor below which no indicators are produced. Partial,
	// unstable indicators are worse than none.
	MinBars = 50

	smaFastPeriod = 50
	smaSlowPeriod = 200

	// RSIPeriod is shared with the market scanner.
	RSIPeriod = 14
)

// Snapshot holds the derived indicator values for one bar of a price series.
// Each value is absent until its window has enough history.
type Snapshot struct {
	Time  time.Time
	Close float64

	SMA50      Value
	SMA200     Value
	RSI14      Value
	MACD       Value
	MACDSignal Value
	K          Value
	D          Value
	J          Value
}

// Compute derives the full indicator snapshot series for a price series,
// aligned 1:1 with the input bars. It returns ErrInsufficientHistory when the
// series has fewer than MinBars bars. Computation is deterministic and total:
// absent values mark unavailable history, never an error.
func Compute(series core.PriceSeries) ([]Snapshot, error) {
	if len(series) < MinBars {
		return nil, core.ErrInsufficientHistory
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()

	sma50 := SMA(closes, smaFastPeriod)
	sma200 := SMA(closes, smaSlowPeriod)
	rsi := RSI(closes, RSIPeriod)
	macd, signal := MACD(closes)
	k, d, j := KDJ(highs, lows, closes)

	snapshots := make([]Snapshot, len(series))
	for i, bar := range series {
		snapshots[i] = Snapshot{
			Time:       bar.Time,
			Close:      bar.Close,
			SMA50:      sma50[i],
			SMA200:     sma200[i],
			RSI14:      rsi[i],
			MACD:       macd[i],
			MACDSignal: signal[i],
			K:          k[i],
			D:          d[i],
			J:          j[i],
		}
	}

	return snapshots, nil
}

// LatestRSI returns the most recent RSI(14) value for a close series. The
// scanner uses this directly with a looser history floor than Compute, since
// it only needs RSI.
func LatestRSI(closes []float64) Value {
	return RSI(closes, RSIPeriod).Last()
}
