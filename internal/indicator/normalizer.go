package indicator

import (
	"errors"

	"signalforge/internal/model"
)

// MinCandles is the minimum history required to evaluate the catalog.
// Below this the normalizer reports ErrInsufficientHistory and the
// caller falls back to allocation-drift-only recommendations.
const MinCandles = 50

// ErrInsufficientHistory is returned when fewer than MinCandles candles
// are available. It is an expected condition, not a failure.
var ErrInsufficientHistory = errors.New("insufficient candle history")

// Indicator weights. These are fixed per catalog entry; presets with
// different weights are distinct Periods values, not runtime mutation.
const (
	weightRSI        = 10.0
	weightMACDCross  = 15.0
	weightMACDTrend  = 8.0
	weightMACross    = 18.0
	weightSMAShort   = 7.0
	weightSMALong    = 7.0
	weightEMA        = 8.0
	weightBollinger  = 8.0
	weightStochastic = 9.0
	weightOBV        = 10.0
	weightPattern    = 10.0
)

// Periods holds the lookback periods of the indicator catalog. The
// value is immutable once handed to a Normalizer.
type Periods struct {
	RSI        int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	BBPeriod   int
	BBStdDev   float64
	EMA        int
	SMAShort   int
	SMALong    int
	StochK     int
	StochD     int
	ATR        int
}

// DefaultPeriods returns the standard catalog configuration.
func DefaultPeriods() Periods {
	return Periods{
		RSI:        14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		BBPeriod:   20,
		BBStdDev:   2.0,
		EMA:        20,
		SMAShort:   20,
		SMALong:    40,
		StochK:     14,
		StochD:     3,
		ATR:        14,
	}
}

// Normalizer maps raw indicator values onto directional readings with
// fixed weights, enforcing the anti-double-counting exclusion rules.
type Normalizer struct {
	periods Periods
}

// NewNormalizer creates a normalizer over the given catalog periods.
func NewNormalizer(p Periods) *Normalizer {
	return &Normalizer{periods: p}
}

// Evaluate produces one reading per catalog indicator for the given
// candle window. Exclusion rules, applied in this fixed order:
//  1. an active MACD crossover suppresses the MACD trend reading
//  2. an active long-horizon MA cross suppresses both individual
//     moving-average position readings
//
// The ATR-based volatility measure is deliberately absent from the
// catalog: it feeds confidence, never the directional aggregate.
func (n *Normalizer) Evaluate(candles []model.Candle) ([]model.IndicatorReading, error) {
	if len(candles) < MinCandles {
		return nil, ErrInsufficientHistory
	}

	p := n.periods
	last := candles[len(candles)-1].Close
	readings := make([]model.IndicatorReading, 0, 11)

	// RSI
	rsi := RSI(candles, p.RSI)
	readings = append(readings, model.IndicatorReading{
		Name:     "rsi",
		RawValue: rsi,
		Signal:   rsiSignal(rsi),
		Weight:   weightRSI,
	})

	// MACD crossover and trend direction. The crossover reading wins
	// when the histogram just flipped sign; emitting both would score
	// the same move twice.
	_, _, hist := MACD(candles, p.MACDFast, p.MACDSlow, p.MACDSignal)
	_, _, prevHist := MACD(candles[:len(candles)-1], p.MACDFast, p.MACDSlow, p.MACDSignal)

	crossSignal := model.SignalNeutral
	if hist > 0 && prevHist <= 0 {
		crossSignal = model.SignalBuy
	} else if hist < 0 && prevHist >= 0 {
		crossSignal = model.SignalSell
	}
	readings = append(readings, model.IndicatorReading{
		Name:     "macd_cross",
		RawValue: hist,
		Signal:   crossSignal,
		Weight:   weightMACDCross,
	})

	if crossSignal == model.SignalNeutral {
		trendSignal := model.SignalNeutral
		if hist > 0 {
			trendSignal = model.SignalBuy
		} else if hist < 0 {
			trendSignal = model.SignalSell
		}
		readings = append(readings, model.IndicatorReading{
			Name:     "macd_trend",
			RawValue: hist,
			Signal:   trendSignal,
			Weight:   weightMACDTrend,
		})
	}

	// Long-horizon MA cross (golden/death). When it is active, the
	// individual MA position readings are suppressed for the same
	// reason as above.
	lastIdx := len(candles) - 1
	smaShort := SMA(candles, p.SMAShort, lastIdx)
	smaLong := SMA(candles, p.SMALong, lastIdx)
	prevShort := SMA(candles, p.SMAShort, lastIdx-1)
	prevLong := SMA(candles, p.SMALong, lastIdx-1)

	maCrossSignal := model.SignalNeutral
	if smaShort > smaLong && prevShort <= prevLong {
		maCrossSignal = model.SignalBuy
	} else if smaShort < smaLong && prevShort >= prevLong {
		maCrossSignal = model.SignalSell
	}
	readings = append(readings, model.IndicatorReading{
		Name:     "ma_cross",
		RawValue: smaShort - smaLong,
		Signal:   maCrossSignal,
		Weight:   weightMACross,
	})

	if maCrossSignal == model.SignalNeutral {
		readings = append(readings,
			model.IndicatorReading{
				Name:     "sma_short",
				RawValue: smaShort,
				Signal:   positionSignal(last, smaShort),
				Weight:   weightSMAShort,
			},
			model.IndicatorReading{
				Name:     "sma_long",
				RawValue: smaLong,
				Signal:   positionSignal(last, smaLong),
				Weight:   weightSMALong,
			})
	}

	// EMA position
	ema := EMA(candles, p.EMA)
	readings = append(readings, model.IndicatorReading{
		Name:     "ema",
		RawValue: ema,
		Signal:   positionSignal(last, ema),
		Weight:   weightEMA,
	})

	// Bollinger Bands
	upper, _, lower := BollingerBands(candles, p.BBPeriod, p.BBStdDev)
	bbSignal := model.SignalNeutral
	if last < lower {
		bbSignal = model.SignalBuy // Below lower band, potential bounce
	} else if last > upper {
		bbSignal = model.SignalSell
	}
	bbRaw := 0.5
	if upper-lower > 0 {
		bbRaw = (last - lower) / (upper - lower)
	}
	readings = append(readings, model.IndicatorReading{
		Name:     "bollinger",
		RawValue: bbRaw,
		Signal:   bbSignal,
		Weight:   weightBollinger,
	})

	// Stochastic oscillator
	k, d := Stochastic(candles, p.StochK, p.StochD)
	stochSignal := model.SignalNeutral
	if k < 20 && d < 20 && k > d {
		stochSignal = model.SignalBuy // Oversold and turning up
	} else if k > 80 && d > 80 && k < d {
		stochSignal = model.SignalSell
	}
	readings = append(readings, model.IndicatorReading{
		Name:     "stochastic",
		RawValue: k,
		Signal:   stochSignal,
		Weight:   weightStochastic,
	})

	// OBV trend confirmation
	readings = append(readings, obvReading(candles))

	// Engulfing reversal, the designated key pattern
	patternSignal := EngulfingPattern(candles)
	readings = append(readings, model.IndicatorReading{
		Name:       "engulfing",
		RawValue:   0,
		Signal:     patternSignal,
		Weight:     weightPattern,
		KeyPattern: patternSignal != model.SignalNeutral,
	})

	return readings, nil
}

func rsiSignal(rsi float64) model.Signal {
	switch {
	case rsi < 30:
		return model.SignalBuy
	case rsi > 70:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

func positionSignal(price, level float64) model.Signal {
	if price > level {
		return model.SignalBuy
	}
	if price < level {
		return model.SignalSell
	}
	return model.SignalNeutral
}

// obvReading signals when volume flow confirms the recent price move.
func obvReading(candles []model.Candle) model.IndicatorReading {
	const lookback = 5

	obvNow := OBV(candles)
	obvThen := OBV(candles[:len(candles)-lookback])
	obvDelta := obvNow - obvThen
	priceDelta := candles[len(candles)-1].Close - candles[len(candles)-1-lookback].Close

	sig := model.SignalNeutral
	if obvDelta > 0 && priceDelta > 0 {
		sig = model.SignalBuy
	} else if obvDelta < 0 && priceDelta < 0 {
		sig = model.SignalSell
	}

	return model.IndicatorReading{
		Name:     "obv",
		RawValue: obvNow,
		Signal:   sig,
		Weight:   weightOBV,
	}
}
