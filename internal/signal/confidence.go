package signal

import (
	"math"

	"signalforge/internal/model"
)

// Confidence bounds. A confidence of 0.05 means "do not trust this at
// all"; 0.95 leaves room for the irreducible uncertainty of markets.
const (
	ConfidenceFloor = 0.05
	ConfidenceCeil  = 0.95
)

// ConfidenceWeights configures the confidence blend. Immutable preset,
// passed explicitly like Weights.
type ConfidenceWeights struct {
	Base      float64 // weight of |signal_strength|/100
	Consensus float64 // weight of the consensus ratio
	Alignment float64 // weight of timeframe agreement
	Bonus     float64 // added per strong-alignment / key-pattern condition
}

// DefaultConfidenceWeights returns the standard confidence preset.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		Base:      0.3,
		Consensus: 0.4,
		Alignment: 0.2,
		Bonus:     0.1,
	}
}

// Confidence derives how trustworthy a signal aggregate is, independent
// of its magnitude. volatilityPct is the ATR-based volatility of the
// window in percent; high volatility reduces confidence but never
// touches the signal strength itself.
//
// Minimum guarantees tie confidence to signal magnitude so a strong
// signal is never reported with a misleadingly low confidence due to an
// unrelated low-consensus read. The floors apply after the bonuses and
// before the final clamp.
func Confidence(agg model.SignalAggregate, volatilityPct float64, w ConfidenceWeights) float64 {
	base := math.Abs(agg.SignalStrength) / 100

	alignment := 0.5
	if agg.TimeframesAgree {
		alignment = 1.0
	}

	conf := w.Base*base + w.Consensus*agg.ConsensusRatio + w.Alignment*alignment
	conf *= volatilityFactor(volatilityPct)

	if agg.StrongAlignment {
		conf += w.Bonus
	}
	if agg.KeyPattern {
		conf += w.Bonus
	}

	abs := math.Abs(agg.SignalStrength)
	switch {
	case abs > 70:
		conf = math.Max(conf, 0.70)
	case abs > 50:
		conf = math.Max(conf, 0.50)
	case abs > 30:
		conf = math.Max(conf, 0.30)
	}

	return clamp(conf, ConfidenceFloor, ConfidenceCeil)
}

// volatilityFactor discounts confidence in volatile markets.
func volatilityFactor(volatilityPct float64) float64 {
	switch {
	case volatilityPct > 5:
		return 0.6
	case volatilityPct >= 3:
		return 0.8
	default:
		return 1.0
	}
}
