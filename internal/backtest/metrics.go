package backtest

import (
	"math"

	"signalforge/internal/model"
)

const hoursPerYear = 24 * 365.25

// ComputeMetrics derives the performance metrics from an equity curve
// and the trade records of a run. The annualization factor comes from
// the observed period count and the real elapsed time of the curve, so
// weekly data is never annualized with a daily constant or vice versa.
func ComputeMetrics(curve []model.EquityPoint, trades []model.TradeRecord, initialCapital float64) model.BacktestResult {
	res := model.BacktestResult{
		EquityCurve:  curve,
		TradeHistory: trades,
	}

	if len(curve) > 0 {
		res.FinalValue = curve[len(curve)-1].TotalValue
	}
	if initialCapital > 0 && len(curve) > 0 {
		res.TotalReturnPct = (res.FinalValue - initialCapital) / initialCapital * 100
	}

	if len(curve) >= 2 {
		years := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / hoursPerYear
		periodsPerYear := 0.0
		if years > 0 {
			periodsPerYear = float64(len(curve)-1) / years
		}

		if years > 0 && initialCapital > 0 && res.FinalValue > 0 {
			res.CAGRPct = (math.Pow(res.FinalValue/initialCapital, 1/years) - 1) * 100
		}

		returns := periodReturns(curve)
		m := mean(returns)
		sd := stdDev(returns, m)
		if sd > 0 && periodsPerYear > 0 {
			res.SharpeRatio = m / sd * math.Sqrt(periodsPerYear)
		}

		res.MaxDrawdownPct = maxDrawdown(curve) * 100
	}

	tallyTrades(&res, trades)

	if res.MaxDrawdownPct > 0 {
		res.CalmarRatio = res.CAGRPct / res.MaxDrawdownPct
	}

	return res
}

// periodReturns computes period-over-period returns from consecutive
// equity points.
func periodReturns(curve []model.EquityPoint) []float64 {
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].TotalValue
		if prev <= 0 {
			continue
		}
		returns = append(returns, (curve[i].TotalValue-prev)/prev)
	}
	return returns
}

// maxDrawdown tracks the running peak across the curve and returns the
// deepest decline from it as a non-negative fraction.
func maxDrawdown(curve []model.EquityPoint) float64 {
	maxDD := 0.0
	peak := curve[0].TotalValue
	for _, p := range curve {
		if p.TotalValue > peak {
			peak = p.TotalValue
		}
		if peak > 0 {
			dd := (peak - p.TotalValue) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// tallyTrades fills win rate, profit factor and per-trade averages.
// Zero-profit trades count as neither wins nor losses.
func tallyTrades(res *model.BacktestResult, trades []model.TradeRecord) {
	var totalProfit, totalLoss float64
	var returnSum float64
	var returnCount int

	for _, t := range trades {
		res.TotalTrades++
		if t.Profit > 0 {
			res.WinningTrades++
			totalProfit += t.Profit
		} else if t.Profit < 0 {
			res.LosingTrades++
			totalLoss += -t.Profit
		}
		if t.EntryPrice > 0 {
			returnSum += (t.ExitPrice - t.EntryPrice) / t.EntryPrice * 100
			returnCount++
		}
	}

	if decided := res.WinningTrades + res.LosingTrades; decided > 0 {
		res.WinRatePct = float64(res.WinningTrades) / float64(decided) * 100
	}

	if totalLoss > 0 {
		res.ProfitFactor = totalProfit / totalLoss
	} else {
		res.ProfitFactor = totalProfit // Unbounded upside with no losses
	}

	if returnCount > 0 {
		res.AvgReturnPerTradePct = returnSum / float64(returnCount)
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}
