package indicator

import "signalforge/internal/model"

// MACD calculates the MACD line, signal line and histogram over the
// full candle window.
func MACD(candles []model.Candle, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, hist float64) {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	if len(closes) < slowPeriod+signalPeriod {
		return 0, 0, 0
	}

	macd = emaFromPrices(closes, fastPeriod) - emaFromPrices(closes, slowPeriod)

	// Signal line is the EMA of the MACD series
	macdHistory := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		window := closes[:i+1]
		macdHistory = append(macdHistory, emaFromPrices(window, fastPeriod)-emaFromPrices(window, slowPeriod))
	}

	if len(macdHistory) >= signalPeriod {
		signal = emaFromPrices(macdHistory, signalPeriod)
	}

	hist = macd - signal
	return macd, signal, hist
}
