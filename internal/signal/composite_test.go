package signal

import (
	"math"
	"testing"

	"signalforge/internal/model"
)

func TestCompositeScoreTerms(t *testing.T) {
	agg := model.SignalAggregate{
		SignalStrength: 100,
		BuyScore:       100,
	}

	// 30 (signal) + 23.75 (confidence) + 20 (direction) + 15 (risk
	// tier) + 10 (drift) = 98.75
	got := CompositeScore(agg, 0.95, model.ActionBuy, 20)
	if math.Abs(got-98.75) > 1e-9 {
		t.Errorf("CompositeScore() = %.2f, want 98.75", got)
	}
}

func TestCompositeScoreDirectionalTerm(t *testing.T) {
	agg := model.SignalAggregate{
		SignalStrength: 50,
		BuyScore:       80,
		SellScore:      30,
	}

	buy := CompositeScore(agg, 0.5, model.ActionBuy, 0)
	sell := CompositeScore(agg, 0.5, model.ActionSell, 0)
	hold := CompositeScore(agg, 0.5, model.ActionHold, 0)

	// Buy uses BuyScore (16), sell uses SellScore (6), hold contributes
	// nothing.
	if math.Abs(buy-sell-10) > 1e-9 {
		t.Errorf("buy-sell directional gap = %.2f, want 10.00", buy-sell)
	}
	if math.Abs(sell-hold-6) > 1e-9 {
		t.Errorf("sell-hold directional gap = %.2f, want 6.00", sell-hold)
	}
}

func TestCompositeScoreRiskTiers(t *testing.T) {
	agg := model.SignalAggregate{SignalStrength: 10}

	high := CompositeScore(agg, 0.70, model.ActionHold, 0)
	mid := CompositeScore(agg, 0.50, model.ActionHold, 0)
	low := CompositeScore(agg, 0.29, model.ActionHold, 0)

	// Strip the shared signal term and the confidence term to compare
	// the discrete tier contribution.
	signalTerm := 3.0
	if got := high - signalTerm - 0.70*25; math.Abs(got-15) > 1e-9 {
		t.Errorf("high tier = %.2f, want 15", got)
	}
	if got := mid - signalTerm - 0.50*25; math.Abs(got-10) > 1e-9 {
		t.Errorf("mid tier = %.2f, want 10", got)
	}
	if got := low - signalTerm - 0.29*25; math.Abs(got-5) > 1e-9 {
		t.Errorf("low tier = %.2f, want 5", got)
	}
}

func TestCompositeScoreDriftSaturates(t *testing.T) {
	agg := model.SignalAggregate{}

	at20 := CompositeScore(agg, 0.5, model.ActionHold, 20)
	at40 := CompositeScore(agg, 0.5, model.ActionHold, 40)
	negative := CompositeScore(agg, 0.5, model.ActionHold, -40)

	if at20 != at40 {
		t.Errorf("drift term not saturated: %.2f vs %.2f", at20, at40)
	}
	if at40 != negative {
		t.Errorf("drift term not symmetric: %.2f vs %.2f", at40, negative)
	}

	half := CompositeScore(agg, 0.5, model.ActionHold, 10)
	if math.Abs(at20-half-5) > 1e-9 {
		t.Errorf("drift scaling off: full %.2f vs half %.2f", at20, half)
	}
}

func TestCompositeScoreBounds(t *testing.T) {
	worst := CompositeScore(model.SignalAggregate{}, 0, model.ActionHold, 0)
	if worst < 0 || worst > 100 {
		t.Errorf("CompositeScore() = %.2f, out of [0, 100]", worst)
	}

	best := CompositeScore(model.SignalAggregate{SignalStrength: 100, BuyScore: 200}, 1.0, model.ActionBuy, 100)
	if best < 0 || best > 100 {
		t.Errorf("CompositeScore() = %.2f, out of [0, 100]", best)
	}
}
