package indicator

import "signalforge/internal/model"

// OBV calculates On-Balance Volume across the candle window.
func OBV(candles []model.Candle) float64 {
	var obv float64
	for i := 1; i < len(candles); i++ {
		if candles[i].Close > candles[i-1].Close {
			obv += float64(candles[i].Volume)
		} else if candles[i].Close < candles[i-1].Close {
			obv -= float64(candles[i].Volume)
		}
	}
	return obv
}
