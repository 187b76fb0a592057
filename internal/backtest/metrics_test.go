package backtest

import (
	"math"
	"testing"
	"time"

	"signalforge/internal/model"
)

func dailyCurve(values []float64) []model.EquityPoint {
	curve := make([]model.EquityPoint, len(values))
	for i, v := range values {
		curve[i] = model.EquityPoint{Date: day(i), TotalValue: v}
	}
	return curve
}

func TestComputeMetricsFlatCurve(t *testing.T) {
	// Capital that never moves: every metric stays at zero, none of
	// them divides by zero.
	curve := dailyCurve([]float64{10000, 10000, 10000, 10000, 10000})
	res := ComputeMetrics(curve, nil, 10000)

	if res.TotalReturnPct != 0 {
		t.Errorf("TotalReturnPct = %.4f, want 0", res.TotalReturnPct)
	}
	if res.CAGRPct != 0 {
		t.Errorf("CAGRPct = %.4f, want 0", res.CAGRPct)
	}
	if res.SharpeRatio != 0 {
		t.Errorf("SharpeRatio = %.4f, want 0 with zero variance", res.SharpeRatio)
	}
	if res.MaxDrawdownPct != 0 {
		t.Errorf("MaxDrawdownPct = %.4f, want 0", res.MaxDrawdownPct)
	}
	if res.CalmarRatio != 0 {
		t.Errorf("CalmarRatio = %.4f, want 0 with no drawdown", res.CalmarRatio)
	}
	if res.FinalValue != 10000 {
		t.Errorf("FinalValue = %.2f, want 10000", res.FinalValue)
	}
}

func TestComputeMetricsMaxDrawdown(t *testing.T) {
	curve := dailyCurve([]float64{10000, 11000, 9900, 10500, 10800})
	res := ComputeMetrics(curve, nil, 10000)

	// Peak 11000 to trough 9900 is a 10% decline.
	if math.Abs(res.MaxDrawdownPct-10) > 1e-9 {
		t.Errorf("MaxDrawdownPct = %.4f, want 10", res.MaxDrawdownPct)
	}
	if res.TotalReturnPct != 8 {
		t.Errorf("TotalReturnPct = %.4f, want 8", res.TotalReturnPct)
	}
}

func TestComputeMetricsAnnualizationFollowsSpacing(t *testing.T) {
	// Identical per-period returns sampled daily and weekly. The daily
	// series must annualize to the larger Sharpe.
	values := []float64{10000, 10100, 10050, 10200, 10150, 10300, 10250, 10400}

	daily := dailyCurve(values)
	weekly := make([]model.EquityPoint, len(values))
	for i, v := range values {
		weekly[i] = model.EquityPoint{Date: day(i * 7), TotalValue: v}
	}

	dailyRes := ComputeMetrics(daily, nil, 10000)
	weeklyRes := ComputeMetrics(weekly, nil, 10000)

	if dailyRes.SharpeRatio <= weeklyRes.SharpeRatio {
		t.Errorf("daily Sharpe %.4f not above weekly Sharpe %.4f", dailyRes.SharpeRatio, weeklyRes.SharpeRatio)
	}
	want := weeklyRes.SharpeRatio * math.Sqrt(7)
	if math.Abs(dailyRes.SharpeRatio-want) > 1e-6 {
		t.Errorf("daily Sharpe = %.6f, want %.6f", dailyRes.SharpeRatio, want)
	}
}

func TestTallyTradesExcludesZeroProfit(t *testing.T) {
	trades := []model.TradeRecord{
		{EntryPrice: 100, ExitPrice: 110, Profit: 100, IsWin: true},
		{EntryPrice: 100, ExitPrice: 100, Profit: 0},
		{EntryPrice: 100, ExitPrice: 95, Profit: -50},
	}
	res := ComputeMetrics(dailyCurve([]float64{10000, 10050}), trades, 10000)

	if res.TotalTrades != 3 {
		t.Errorf("TotalTrades = %d, want 3", res.TotalTrades)
	}
	if res.WinningTrades != 1 || res.LosingTrades != 1 {
		t.Errorf("wins/losses = %d/%d, want 1/1", res.WinningTrades, res.LosingTrades)
	}
	// The zero-profit trade is excluded from the denominator.
	if res.WinRatePct != 50 {
		t.Errorf("WinRatePct = %.2f, want 50", res.WinRatePct)
	}
	if res.ProfitFactor != 2 {
		t.Errorf("ProfitFactor = %.2f, want 2", res.ProfitFactor)
	}
}

func TestProfitFactorWithoutLosses(t *testing.T) {
	trades := []model.TradeRecord{
		{EntryPrice: 100, ExitPrice: 110, Profit: 150, IsWin: true},
		{EntryPrice: 100, ExitPrice: 105, Profit: 50, IsWin: true},
	}
	res := ComputeMetrics(dailyCurve([]float64{10000, 10200}), trades, 10000)

	if res.ProfitFactor != 200 {
		t.Errorf("ProfitFactor = %.2f, want the total profit 200 with no losses", res.ProfitFactor)
	}
	if res.WinRatePct != 100 {
		t.Errorf("WinRatePct = %.2f, want 100", res.WinRatePct)
	}
}

func TestComputeMetricsCAGR(t *testing.T) {
	// Exactly one year, 10000 to 12000: CAGR equals the total return.
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := []model.EquityPoint{
		{Date: start, TotalValue: 10000},
		{Date: start.Add(time.Duration(hoursPerYear/2) * time.Hour), TotalValue: 11000},
		{Date: start.Add(time.Duration(hoursPerYear) * time.Hour), TotalValue: 12000},
	}
	res := ComputeMetrics(curve, nil, 10000)

	if math.Abs(res.CAGRPct-20) > 0.01 {
		t.Errorf("CAGRPct = %.4f, want 20", res.CAGRPct)
	}
}
