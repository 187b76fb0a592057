package signal

import (
	"math"
	"testing"

	"signalforge/internal/model"
)

func TestConfidenceMinimumGuarantees(t *testing.T) {
	tests := []struct {
		name     string
		strength float64
		minimum  float64
	}{
		{"very strong signal floors at 0.70", 75, 0.70},
		{"strong signal floors at 0.50", 55, 0.50},
		{"moderate signal floors at 0.30", 35, 0.30},
		{"negative strength uses magnitude", -75, 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Everything else about the aggregate argues for low
			// confidence; the guarantee must still hold.
			agg := model.SignalAggregate{SignalStrength: tt.strength}
			got := Confidence(agg, 10, DefaultConfidenceWeights())
			if got < tt.minimum {
				t.Errorf("Confidence() = %.3f, want at least %.2f", got, tt.minimum)
			}
		})
	}
}

func TestConfidenceVolatilityDiscount(t *testing.T) {
	// Keep |strength| below every guarantee threshold so the discount is
	// observable.
	agg := model.SignalAggregate{SignalStrength: 20, ConsensusRatio: 0.5}
	w := DefaultConfidenceWeights()

	calm := Confidence(agg, 1, w)
	elevated := Confidence(agg, 4, w)
	extreme := Confidence(agg, 6, w)

	if !(calm > elevated && elevated > extreme) {
		t.Errorf("volatility discount not monotonic: %.3f / %.3f / %.3f", calm, elevated, extreme)
	}
	if math.Abs(elevated/calm-0.8) > 1e-9 {
		t.Errorf("elevated volatility factor = %.3f, want 0.8", elevated/calm)
	}
	if math.Abs(extreme/calm-0.6) > 1e-9 {
		t.Errorf("extreme volatility factor = %.3f, want 0.6", extreme/calm)
	}
}

func TestConfidenceBonuses(t *testing.T) {
	agg := model.SignalAggregate{SignalStrength: 20, ConsensusRatio: 0.5}
	w := DefaultConfidenceWeights()
	base := Confidence(agg, 0, w)

	agg.StrongAlignment = true
	agg.TimeframesAgree = true
	withAlignment := Confidence(agg, 0, w)
	if withAlignment <= base {
		t.Errorf("strong alignment did not raise confidence: %.3f vs %.3f", withAlignment, base)
	}

	agg.KeyPattern = true
	withPattern := Confidence(agg, 0, w)
	if withPattern <= withAlignment {
		t.Errorf("key pattern did not raise confidence: %.3f vs %.3f", withPattern, withAlignment)
	}
}

func TestConfidenceBounds(t *testing.T) {
	// Everything maxed overshoots 1.0 and must clamp at the ceiling.
	best := model.SignalAggregate{
		SignalStrength:  100,
		ConsensusRatio:  1.0,
		TimeframesAgree: true,
		StrongAlignment: true,
		KeyPattern:      true,
	}
	if got := Confidence(best, 0, DefaultConfidenceWeights()); got != ConfidenceCeil {
		t.Errorf("Confidence() = %.3f, want ceiling %.2f", got, ConfidenceCeil)
	}

	// Zero weights drive the raw value to 0 and must clamp at the floor.
	if got := Confidence(model.SignalAggregate{}, 0, ConfidenceWeights{}); got != ConfidenceFloor {
		t.Errorf("Confidence() = %.3f, want floor %.2f", got, ConfidenceFloor)
	}
}
