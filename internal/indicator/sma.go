package indicator

// SMA calculates the Simple Moving Average of the trailing period closes.
// Output is aligned 1:1 with the input; the first period-1 rows are absent.
func SMA(prices []float64, period int) Series {
	result := make(Series, len(prices))
	if period <= 0 || len(prices) < period {
		return result
	}

	// Rolling sum over the trailing window
	var sum float64
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			result[i] = Some(sum / float64(period))
		}
	}

	return result
}

// EMA calculates the Exponential Moving Average with smoothing factor
// 2/(period+1), seeded with the first price. There is no warm-up average, so
// every row is present.
func EMA(prices []float64, period int) Series {
	result := make(Series, len(prices))
	if period <= 0 || len(prices) == 0 {
		return result
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	result[0] = Some(ema)

	for i := 1; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		result[i] = Some(ema)
	}

	return result
}

// smooth applies exponential smoothing with the given alpha to a nullable
// series, seeding at the first present input row. Used by the MACD signal
// line and the stochastic K/D lines.
func smooth(values Series, alpha float64) Series {
	result := make(Series, len(values))
	seeded := false
	var acc float64

	for i, v := range values {
		if !v.Valid {
			continue
		}
		if !seeded {
			acc = v.Float64
			seeded = true
		} else {
			acc = alpha*v.Float64 + (1-alpha)*acc
		}
		result[i] = Some(acc)
	}

	return result
}
