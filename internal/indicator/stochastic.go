package indicator

import "signalforge/internal/model"

// Stochastic calculates the %K and %D values of the stochastic
// oscillator. %D is a simple moving average of %K.
func Stochastic(candles []model.Candle, kPeriod, dPeriod int) (k, d float64) {
	if len(candles) < kPeriod {
		return 50.0, 50.0
	}

	k = stochasticK(candles, len(candles)-1, kPeriod)

	count := dPeriod
	if count > len(candles)-kPeriod+1 {
		count = len(candles) - kPeriod + 1
	}
	if count < 1 {
		count = 1
	}

	var kSum float64
	for i := 0; i < count; i++ {
		kSum += stochasticK(candles, len(candles)-1-i, kPeriod)
	}
	d = kSum / float64(count)

	return k, d
}

// stochasticK computes %K for the window of kPeriod candles ending at
// endIdx.
func stochasticK(candles []model.Candle, endIdx, kPeriod int) float64 {
	start := endIdx - kPeriod + 1
	if start < 0 {
		start = 0
	}

	highest := candles[start].High
	lowest := candles[start].Low
	for i := start + 1; i <= endIdx; i++ {
		if candles[i].High > highest {
			highest = candles[i].High
		}
		if candles[i].Low < lowest {
			lowest = candles[i].Low
		}
	}

	if highest-lowest <= 0 {
		return 50.0 // No range, default to middle
	}
	return (candles[endIdx].Close - lowest) / (highest - lowest) * 100
}
