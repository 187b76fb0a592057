package indicator

import "signalforge/internal/model"

// SMA calculates the simple moving average of closes over the last
// period candles of the window ending at endIdx (inclusive).
func SMA(candles []model.Candle, period, endIdx int) float64 {
	if endIdx < 0 || endIdx >= len(candles) {
		return 0
	}
	if endIdx+1 < period {
		period = endIdx + 1
	}
	if period == 0 {
		return 0
	}

	var sum float64
	for i := endIdx - period + 1; i <= endIdx; i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}

// EMA calculates the exponential moving average of closes across the
// whole window.
func EMA(candles []model.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < period {
		return candles[len(candles)-1].Close
	}

	multiplier := 2.0 / float64(period+1)
	ema := candles[0].Close
	for i := 1; i < len(candles); i++ {
		ema = (candles[i].Close-ema)*multiplier + ema
	}
	return ema
}

// emaFromPrices is EMA over a plain price series; used by MACD.
func emaFromPrices(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	for i := 1; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}
	return ema
}
