// Package signal turns normalized indicator readings into a bounded
// directional aggregate, a confidence value and a composite priority
// score.
package signal

import (
	"math"

	"signalforge/internal/model"
)

// Weights configures the aggregator. It is immutable by convention:
// alternative presets are distinct values passed in explicitly, never
// shared mutable state.
type Weights struct {
	ConsensusThreshold float64 // consensus ratio above which the bonus applies
	ConsensusBonus     float64
	AlignmentStrength  float64 // min |strength| on both timeframes for the bonus
	AlignmentBonus     float64
	PatternBonus       float64
}

// DefaultWeights returns the standard aggregation preset.
func DefaultWeights() Weights {
	return Weights{
		ConsensusThreshold: 0.8,
		ConsensusBonus:     0.2,
		AlignmentStrength:  30,
		AlignmentBonus:     0.3,
		PatternBonus:       0.2,
	}
}

// Aggregate sums the signed indicator weights into a bounded signal
// strength. The order is fixed: raw sum, then quality multiplier, then
// clamp. Clamping first would under-reward strongly corroborated
// signals.
func Aggregate(readings []model.IndicatorReading, tf model.TimeframeContext, w Weights) model.SignalAggregate {
	agg := model.SignalAggregate{QualityMultiplier: 1.0}

	var rawSum float64
	for _, r := range readings {
		switch r.Signal {
		case model.SignalBuy:
			rawSum += r.Weight
			agg.BuyScore += r.Weight
			agg.BullishCount++
			if r.KeyPattern {
				agg.KeyPattern = true
			}
		case model.SignalSell:
			rawSum -= r.Weight
			agg.SellScore += r.Weight
			agg.BearishCount++
			if r.KeyPattern {
				agg.KeyPattern = true
			}
		default:
			agg.NeutralCount++
		}
	}

	if total := agg.TotalCount(); total > 0 {
		agg.ConsensusRatio = math.Max(float64(agg.BullishCount), float64(agg.BearishCount)) / float64(total)
	}

	// Cross-timeframe agreement: the higher timeframe points the same
	// way as the raw sum.
	if tf.HasHigher && rawSum != 0 && tf.HigherStrength != 0 {
		agg.TimeframesAgree = (rawSum > 0) == (tf.HigherStrength > 0)
		agg.StrongAlignment = agg.TimeframesAgree &&
			math.Abs(rawSum) > w.AlignmentStrength &&
			math.Abs(tf.HigherStrength) > w.AlignmentStrength
	}

	if agg.ConsensusRatio > w.ConsensusThreshold {
		agg.QualityMultiplier += w.ConsensusBonus
	}
	if agg.StrongAlignment {
		agg.QualityMultiplier += w.AlignmentBonus
	}
	if agg.KeyPattern {
		agg.QualityMultiplier += w.PatternBonus
	}

	agg.SignalStrength = clamp(rawSum*agg.QualityMultiplier, -100, 100)
	return agg
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
