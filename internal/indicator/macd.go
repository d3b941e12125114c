package indicator

// MACD periods
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// MACD calculates the Moving Average Convergence Divergence line
// (EMA(12) - EMA(26)) and its signal line (EMA(9) of the MACD line). Both
// EMAs seed with their first input value, so every row is present.
func MACD(prices []float64) (macd, signal Series) {
	macd = make(Series, len(prices))
	if len(prices) == 0 {
		return macd, Series{}
	}

	fast := EMA(prices, macdFastPeriod)
	slow := EMA(prices, macdSlowPeriod)
	for i := range prices {
		macd[i] = Some(fast[i].Float64 - slow[i].Float64)
	}

	signal = smooth(macd, 2.0/float64(macdSignalPeriod+1))
	return macd, signal
}
