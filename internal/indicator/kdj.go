package indicator

// Stochastic parameters: 9-bar lookback, exponential smoothing with a
// center-of-mass of 2 (alpha = 1/(1+2) = 1/3).
const (
	kdjLookback = 9
	kdjAlpha    = 1.0 / 3.0
)

// KDJ calculates the stochastic K, D and J lines. The raw stochastic value
// RSV needs a full 9-bar lookback, so the first 8 rows are absent. When the
// lookback high-low range is zero the RSV is undefined; this engine defines
// it as 50, the midpoint, to avoid a division fault. K smooths RSV, D
// smooths K, and J = 3K - 2D; J may leave [0, 100] and is not clamped.
func KDJ(highs, lows, closes []float64) (k, d, j Series) {
	n := len(closes)
	rsv := make(Series, n)
	if len(highs) != n || len(lows) != n {
		return rsv, make(Series, n), make(Series, n)
	}

	for i := kdjLookback - 1; i < n; i++ {
		hh := highs[i]
		ll := lows[i]
		for w := i - kdjLookback + 1; w < i; w++ {
			if highs[w] > hh {
				hh = highs[w]
			}
			if lows[w] < ll {
				ll = lows[w]
			}
		}

		if hh == ll {
			rsv[i] = Some(50)
			continue
		}
		rsv[i] = Some((closes[i] - ll) / (hh - ll) * 100)
	}

	k = smooth(rsv, kdjAlpha)
	d = smooth(k, kdjAlpha)

	j = make(Series, n)
	for i := range j {
		if k[i].Valid && d[i].Valid {
			j[i] = Some(3*k[i].Float64 - 2*d[i].Float64)
		}
	}

	return k, d, j
}
