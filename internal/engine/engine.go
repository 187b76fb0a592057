// Package engine wires the indicator normalizer, signal aggregator,
// confidence model and composite scorer into a single evaluation
// pipeline. Evaluate is a pure function of its inputs: the same candle
// window always yields the same recommendation.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalforge/internal/indicator"
	"signalforge/internal/model"
	"signalforge/internal/signal"
)

// ResampleFactor compresses the primary window into the higher
// timeframe used for alignment checks. Callers that cap their window
// length must leave at least ResampleFactor*indicator.MinCandles
// candles or the higher-timeframe pass never activates.
const ResampleFactor = 5

// driftActionThreshold is the allocation drift (in percentage points)
// beyond which a drift-only recommendation becomes actionable.
const driftActionThreshold = 10.0

// Engine evaluates candle windows into recommendations.
type Engine struct {
	periods         indicator.Periods
	weights         signal.Weights
	confWeights     signal.ConfidenceWeights
	normalizer      *indicator.Normalizer
	signalThreshold float64
	logger          zerolog.Logger
}

// New creates an evaluation engine. signalThreshold is the absolute
// signal strength above which a directional action is recommended.
func New(periods indicator.Periods, w signal.Weights, cw signal.ConfidenceWeights, signalThreshold float64) *Engine {
	return &Engine{
		periods:         periods,
		weights:         w,
		confWeights:     cw,
		normalizer:      indicator.NewNormalizer(periods),
		signalThreshold: signalThreshold,
		logger:          log.With().Str("component", "engine").Logger(),
	}
}

// NewDefault creates an engine with the standard presets.
func NewDefault(signalThreshold float64) *Engine {
	return New(indicator.DefaultPeriods(), signal.DefaultWeights(), signal.DefaultConfidenceWeights(), signalThreshold)
}

// Evaluate runs the full scoring pipeline over the candle window.
// With fewer than the minimum candles it falls back to an
// allocation-drift-only recommendation instead of failing.
func (e *Engine) Evaluate(symbol string, candles []model.Candle, allocationDrift float64) model.Recommendation {
	readings, err := e.normalizer.Evaluate(candles)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			e.logger.Debug().Str("symbol", symbol).Int("candles", len(candles)).
				Msg("Insufficient history, falling back to allocation drift")
			return e.driftOnly(symbol, candles, allocationDrift)
		}
		// The normalizer has no other failure modes today; treat an
		// unknown error like missing data rather than crash.
		return e.driftOnly(symbol, candles, allocationDrift)
	}

	tf := e.higherTimeframe(candles)
	agg := signal.Aggregate(readings, tf, e.weights)
	volatility := indicator.VolatilityPct(candles, e.periods.ATR)
	confidence := signal.Confidence(agg, volatility, e.confWeights)
	action := e.actionFor(agg.SignalStrength)
	composite := signal.CompositeScore(agg, confidence, action, allocationDrift)

	return model.Recommendation{
		Symbol:          symbol,
		Action:          action,
		Priority:        priorityFor(composite),
		SignalStrength:  agg.SignalStrength,
		Confidence:      confidence,
		CompositeScore:  composite,
		AllocationDrift: allocationDrift,
		Reason:          buildReason(agg, volatility, action),
		EvaluatedAt:     lastTimestamp(candles),
	}
}

// higherTimeframe aggregates a resampled copy of the window so the
// primary evaluation can judge cross-timeframe alignment.
func (e *Engine) higherTimeframe(candles []model.Candle) model.TimeframeContext {
	resampled := indicator.Resample(candles, ResampleFactor)
	readings, err := e.normalizer.Evaluate(resampled)
	if err != nil {
		return model.TimeframeContext{}
	}
	agg := signal.Aggregate(readings, model.TimeframeContext{}, e.weights)
	return model.TimeframeContext{HigherStrength: agg.SignalStrength, HasHigher: true}
}

// driftOnly builds the fallback recommendation used when no reliable
// signal can be computed. Signal strength is zero and confidence sits
// at the floor; only the allocation drift can drive an action.
func (e *Engine) driftOnly(symbol string, candles []model.Candle, allocationDrift float64) model.Recommendation {
	action := model.ActionHold
	if allocationDrift >= driftActionThreshold {
		action = model.ActionBuy
	} else if allocationDrift <= -driftActionThreshold {
		action = model.ActionSell
	}

	var agg model.SignalAggregate
	composite := signal.CompositeScore(agg, signal.ConfidenceFloor, action, allocationDrift)

	return model.Recommendation{
		Symbol:          symbol,
		Action:          action,
		Priority:        priorityFor(composite),
		SignalStrength:  0,
		Confidence:      signal.ConfidenceFloor,
		CompositeScore:  composite,
		AllocationDrift: allocationDrift,
		Reason:          "insufficient history; allocation drift only",
		EvaluatedAt:     lastTimestamp(candles),
	}
}

func (e *Engine) actionFor(strength float64) model.Action {
	if strength >= e.signalThreshold {
		return model.ActionBuy
	}
	if strength <= -e.signalThreshold {
		return model.ActionSell
	}
	return model.ActionHold
}

func priorityFor(composite float64) model.Priority {
	switch {
	case composite >= 70:
		return model.PriorityHigh
	case composite >= 40:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func buildReason(agg model.SignalAggregate, volatility float64, action model.Action) string {
	factors := []string{
		fmt.Sprintf("%d bullish / %d bearish / %d neutral indicators",
			agg.BullishCount, agg.BearishCount, agg.NeutralCount),
		fmt.Sprintf("consensus %.0f%%", agg.ConsensusRatio*100),
	}

	if agg.QualityMultiplier > 1.0 {
		factors = append(factors, fmt.Sprintf("quality multiplier %.1fx", agg.QualityMultiplier))
	}
	if agg.TimeframesAgree {
		factors = append(factors, "timeframes aligned")
	}
	if agg.KeyPattern {
		factors = append(factors, "reversal pattern present")
	}
	if volatility > 3 {
		factors = append(factors, fmt.Sprintf("elevated volatility %.1f%%", volatility))
	}

	return fmt.Sprintf("%s: %s", action, strings.Join(factors, ", "))
}

func lastTimestamp(candles []model.Candle) time.Time {
	if len(candles) == 0 {
		return time.Time{}
	}
	return candles[len(candles)-1].Timestamp
}
