package indicator

import (
	"math"

	"signalforge/internal/model"
)

// ATR calculates the Average True Range over the last period candles.
func ATR(candles []model.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}

	var trueRanges []float64
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	if len(trueRanges) < period {
		period = len(trueRanges)
	}

	var sum float64
	for i := len(trueRanges) - period; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(period)
}

// VolatilityPct reports ATR as a percentage of the latest close. This
// feeds the confidence model only; it never contributes a directional
// signal to the aggregate.
func VolatilityPct(candles []model.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	last := candles[len(candles)-1].Close
	if last <= 0 {
		return 0
	}
	return ATR(candles, period) / last * 100
}
