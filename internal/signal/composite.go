package signal

import (
	"math"

	"signalforge/internal/model"
)

// Composite score term ceilings. Each term is computed independently,
// summed once, then clamped once.
const (
	compositeSignalMax    = 30.0
	compositeConfMax      = 25.0
	compositeDirectionMax = 20.0
	compositeRiskHigh     = 15.0
	compositeRiskMid      = 10.0
	compositeRiskLow      = 5.0
	compositeDriftMax     = 10.0

	// An allocation drift of 20 percentage points contributes the
	// full drift term.
	driftFullScale = 20.0
)

// Confidence bands for the discrete risk tier term.
const (
	riskTierHighConfidence = 0.70
	riskTierLowConfidence  = 0.30
)

// CompositeScore blends signal strength, confidence, the directional
// sub-score matching the chosen action, a discrete risk tier and
// allocation drift into a single 0-100 priority.
func CompositeScore(agg model.SignalAggregate, confidence float64, action model.Action, allocationDrift float64) float64 {
	signalTerm := math.Abs(agg.SignalStrength) / 100 * compositeSignalMax

	confTerm := confidence * compositeConfMax

	var directional float64
	switch action {
	case model.ActionBuy:
		directional = agg.BuyScore
	case model.ActionSell:
		directional = agg.SellScore
	}
	directionTerm := math.Min(directional/100, 1.0) * compositeDirectionMax

	riskTerm := compositeRiskMid
	switch {
	case confidence >= riskTierHighConfidence:
		riskTerm = compositeRiskHigh
	case confidence < riskTierLowConfidence:
		riskTerm = compositeRiskLow
	}

	driftTerm := math.Min(math.Abs(allocationDrift)/driftFullScale, 1.0) * compositeDriftMax

	return clamp(signalTerm+confTerm+directionTerm+riskTerm+driftTerm, 0, 100)
}
