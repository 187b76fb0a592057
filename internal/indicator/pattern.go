package indicator

import (
	"math"

	"signalforge/internal/model"
)

// EngulfingPattern checks the last two candles for an engulfing
// reversal. Returns SignalBuy for a bullish engulfing, SignalSell for a
// bearish one, SignalNeutral otherwise. The engulfing body must be at
// least 20% larger than the engulfed one.
func EngulfingPattern(candles []model.Candle) model.Signal {
	if len(candles) < 2 {
		return model.SignalNeutral
	}

	prev := candles[len(candles)-2]
	cur := candles[len(candles)-1]

	prevBody := math.Abs(prev.Close - prev.Open)
	curBody := math.Abs(cur.Close - cur.Open)
	if prevBody == 0 || curBody < prevBody*1.2 {
		return model.SignalNeutral
	}

	prevBullish := prev.Close > prev.Open
	curBullish := cur.Close > cur.Open

	if curBullish && !prevBullish && cur.Open < prev.Close && cur.Close > prev.Open {
		return model.SignalBuy
	}
	if !curBullish && prevBullish && cur.Open > prev.Close && cur.Close < prev.Open {
		return model.SignalSell
	}
	return model.SignalNeutral
}
