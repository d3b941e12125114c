package indicator

// RSI calculates the Relative Strength Index over trailing simple averages
// of gains and losses. Row i needs period deltas, so the first period rows
// are absent. When the trailing loss average is exactly zero the ratio is
// undefined; this engine defines RSI as 100 in that case (an all-gain or
// perfectly flat window reads as maximally overbought, never a division
// fault).
func RSI(prices []float64, period int) Series {
	result := make(Series, len(prices))
	if period <= 0 || len(prices) <= period {
		return result
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	// Rolling window sums over the trailing period deltas
	var gainSum, lossSum float64
	for i := 1; i < len(prices); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}

		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			result[i] = Some(100)
			continue
		}
		rs := (gainSum / float64(period)) / avgLoss
		result[i] = Some(100 - 100/(1+rs))
	}

	return result
}
