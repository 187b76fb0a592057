package signal

import (
	"math"
	"testing"

	"signalforge/internal/model"
)

func buyReadings(count int, weight float64) []model.IndicatorReading {
	readings := make([]model.IndicatorReading, count)
	for i := range readings {
		readings[i] = model.IndicatorReading{Name: "r", Signal: model.SignalBuy, Weight: weight}
	}
	return readings
}

func TestAggregateUnanimousBuy(t *testing.T) {
	// Ten bullish indicators of weight ten: raw sum 100, unanimous
	// consensus earns the quality bonus, and the result clamps at 100.
	agg := Aggregate(buyReadings(10, 10), model.TimeframeContext{}, DefaultWeights())

	if agg.SignalStrength != 100 {
		t.Errorf("SignalStrength = %.2f, want 100", agg.SignalStrength)
	}
	if agg.BuyScore != 100 || agg.SellScore != 0 {
		t.Errorf("BuyScore/SellScore = %.2f/%.2f, want 100/0", agg.BuyScore, agg.SellScore)
	}
	if agg.BullishCount != 10 || agg.BearishCount != 0 || agg.NeutralCount != 0 {
		t.Errorf("counts = %d/%d/%d, want 10/0/0", agg.BullishCount, agg.BearishCount, agg.NeutralCount)
	}
	if agg.ConsensusRatio != 1.0 {
		t.Errorf("ConsensusRatio = %.2f, want 1.00", agg.ConsensusRatio)
	}
	if agg.QualityMultiplier != 1.2 {
		t.Errorf("QualityMultiplier = %.2f, want 1.20", agg.QualityMultiplier)
	}
}

func TestAggregateMixed(t *testing.T) {
	readings := []model.IndicatorReading{
		{Signal: model.SignalBuy, Weight: 15},
		{Signal: model.SignalBuy, Weight: 10},
		{Signal: model.SignalSell, Weight: 8},
		{Signal: model.SignalNeutral, Weight: 9},
	}
	agg := Aggregate(readings, model.TimeframeContext{}, DefaultWeights())

	if agg.SignalStrength != 17 {
		t.Errorf("SignalStrength = %.2f, want 17", agg.SignalStrength)
	}
	if agg.BuyScore != 25 || agg.SellScore != 8 {
		t.Errorf("BuyScore/SellScore = %.2f/%.2f, want 25/8", agg.BuyScore, agg.SellScore)
	}
	if agg.TotalCount() != 4 {
		t.Errorf("TotalCount() = %d, want 4", agg.TotalCount())
	}
	if agg.ConsensusRatio != 0.5 {
		t.Errorf("ConsensusRatio = %.2f, want 0.50", agg.ConsensusRatio)
	}
	if agg.QualityMultiplier != 1.0 {
		t.Errorf("QualityMultiplier = %.2f, want 1.00 with split consensus", agg.QualityMultiplier)
	}
}

func TestAggregateClampNegative(t *testing.T) {
	readings := make([]model.IndicatorReading, 12)
	for i := range readings {
		readings[i] = model.IndicatorReading{Signal: model.SignalSell, Weight: 12}
	}
	agg := Aggregate(readings, model.TimeframeContext{}, DefaultWeights())

	if agg.SignalStrength != -100 {
		t.Errorf("SignalStrength = %.2f, want -100", agg.SignalStrength)
	}
}

func TestAggregateTimeframeAlignment(t *testing.T) {
	tests := []struct {
		name           string
		tf             model.TimeframeContext
		wantAgree      bool
		wantStrong     bool
		wantMultiplier float64
	}{
		{
			name:           "no higher timeframe",
			tf:             model.TimeframeContext{},
			wantAgree:      false,
			wantStrong:     false,
			wantMultiplier: 1.2, // unanimous consensus only
		},
		{
			name:           "aligned and strong on both",
			tf:             model.TimeframeContext{HigherStrength: 60, HasHigher: true},
			wantAgree:      true,
			wantStrong:     true,
			wantMultiplier: 1.5, // consensus + alignment
		},
		{
			name:           "aligned but weak higher timeframe",
			tf:             model.TimeframeContext{HigherStrength: 10, HasHigher: true},
			wantAgree:      true,
			wantStrong:     false,
			wantMultiplier: 1.2,
		},
		{
			name:           "opposing higher timeframe",
			tf:             model.TimeframeContext{HigherStrength: -60, HasHigher: true},
			wantAgree:      false,
			wantStrong:     false,
			wantMultiplier: 1.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate(buyReadings(5, 10), tt.tf, DefaultWeights())
			if agg.TimeframesAgree != tt.wantAgree {
				t.Errorf("TimeframesAgree = %v, want %v", agg.TimeframesAgree, tt.wantAgree)
			}
			if agg.StrongAlignment != tt.wantStrong {
				t.Errorf("StrongAlignment = %v, want %v", agg.StrongAlignment, tt.wantStrong)
			}
			if math.Abs(agg.QualityMultiplier-tt.wantMultiplier) > 1e-9 {
				t.Errorf("QualityMultiplier = %.2f, want %.2f", agg.QualityMultiplier, tt.wantMultiplier)
			}
		})
	}
}

func TestAggregateKeyPatternBonus(t *testing.T) {
	readings := append(buyReadings(4, 10), model.IndicatorReading{
		Name: "engulfing", Signal: model.SignalBuy, Weight: 10, KeyPattern: true,
	})
	agg := Aggregate(readings, model.TimeframeContext{}, DefaultWeights())

	if !agg.KeyPattern {
		t.Error("KeyPattern not propagated from readings")
	}
	// Consensus bonus plus pattern bonus.
	if math.Abs(agg.QualityMultiplier-1.4) > 1e-9 {
		t.Errorf("QualityMultiplier = %.2f, want 1.40", agg.QualityMultiplier)
	}
	// 50 * 1.4, applied before the clamp.
	if math.Abs(agg.SignalStrength-70) > 1e-9 {
		t.Errorf("SignalStrength = %.2f, want 70", agg.SignalStrength)
	}
}
