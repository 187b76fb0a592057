package indicator

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"signalforge/internal/model"
)

func TestEvaluateInsufficientHistory(t *testing.T) {
	n := NewNormalizer(DefaultPeriods())
	candles := generateTestCandles(MinCandles-1, func(i int) model.Candle {
		return model.Candle{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	})

	readings, err := n.Evaluate(candles)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("Evaluate() error = %v, want ErrInsufficientHistory", err)
	}
	if readings != nil {
		t.Errorf("Evaluate() readings = %v, want nil", readings)
	}
}

func TestEvaluateCatalog(t *testing.T) {
	n := NewNormalizer(DefaultPeriods())
	candles := generateTestCandles(80, func(i int) model.Candle {
		base := 100 + float64(i)*0.5 + math.Sin(float64(i))*2
		return model.Candle{
			Open:   base - 0.2,
			High:   base + 1,
			Low:    base - 1,
			Close:  base,
			Volume: int64(1000 + i*10),
		}
	})

	readings, err := n.Evaluate(candles)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	names := make(map[string]model.IndicatorReading)
	for _, r := range readings {
		if _, dup := names[r.Name]; dup {
			t.Errorf("duplicate reading %q", r.Name)
		}
		if r.Weight <= 0 {
			t.Errorf("reading %q has non-positive weight %.2f", r.Name, r.Weight)
		}
		names[r.Name] = r
	}

	for _, required := range []string{"rsi", "macd_cross", "ma_cross", "ema", "bollinger", "stochastic", "obv", "engulfing"} {
		if _, ok := names[required]; !ok {
			t.Errorf("catalog is missing %q", required)
		}
	}

	// Volatility never contributes a directional reading.
	if _, ok := names["atr"]; ok {
		t.Error("ATR must not appear in the directional catalog")
	}

	// An active MACD crossover suppresses the trend reading.
	if cross, ok := names["macd_cross"]; ok && cross.Signal != model.SignalNeutral {
		if _, both := names["macd_trend"]; both {
			t.Error("macd_trend present alongside an active macd_cross")
		}
	}

	// An active MA cross suppresses both position readings.
	if cross, ok := names["ma_cross"]; ok && cross.Signal != model.SignalNeutral {
		if _, short := names["sma_short"]; short {
			t.Error("sma_short present alongside an active ma_cross")
		}
		if _, long := names["sma_long"]; long {
			t.Error("sma_long present alongside an active ma_cross")
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	n := NewNormalizer(DefaultPeriods())
	candles := generateTestCandles(70, func(i int) model.Candle {
		base := 100 + float64(i%9) - float64(i%4)*1.5
		return model.Candle{
			Open:   base,
			High:   base + 1.2,
			Low:    base - 1.2,
			Close:  base + 0.3,
			Volume: int64(500 + i*7),
		}
	})

	first, err := n.Evaluate(candles)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	second, err := n.Evaluate(candles)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Evaluate() is not deterministic over the same window")
	}
}

func TestEngulfingIsKeyPattern(t *testing.T) {
	// Downtrend, then a bullish candle whose body engulfs the previous
	// bearish body.
	candles := generateTestCandles(60, func(i int) model.Candle {
		base := 150 - float64(i)
		return model.Candle{Open: base + 0.5, High: base + 1, Low: base - 1, Close: base - 0.5, Volume: 1000}
	})
	last := len(candles) - 1
	candles[last].Open = candles[last-1].Close - 0.5
	candles[last].Close = candles[last-1].Open + 1.0
	candles[last].High = candles[last].Close + 0.5
	candles[last].Low = candles[last].Open - 0.5

	n := NewNormalizer(DefaultPeriods())
	readings, err := n.Evaluate(candles)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	for _, r := range readings {
		if r.Name != "engulfing" {
			if r.KeyPattern {
				t.Errorf("reading %q is flagged as key pattern", r.Name)
			}
			continue
		}
		if r.Signal != model.SignalBuy {
			t.Errorf("engulfing signal = %s, want buy", r.Signal)
		}
		if !r.KeyPattern {
			t.Error("active engulfing reading is not flagged as key pattern")
		}
	}
}
