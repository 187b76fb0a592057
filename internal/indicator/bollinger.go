package indicator

import (
	"math"

	"signalforge/internal/model"
)

// BollingerBands calculates the upper, middle and lower band over the
// last period candles.
func BollingerBands(candles []model.Candle, period int, stdDevs float64) (upper, middle, lower float64) {
	if len(candles) < period {
		last := candles[len(candles)-1].Close
		return last, last, last
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	middle = sum / float64(period)

	var variance float64
	for i := len(candles) - period; i < len(candles); i++ {
		diff := candles[i].Close - middle
		variance += diff * diff
	}
	sd := math.Sqrt(variance / float64(period))

	return middle + sd*stdDevs, middle, middle - sd*stdDevs
}
