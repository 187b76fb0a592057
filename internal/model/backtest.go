package model

import "time"

// Strategy selects how the simulator decides entries.
type Strategy string

const (
	StrategyFollowAI       Strategy = "follow_ai"
	StrategyHighConfidence Strategy = "high_confidence"
	StrategyBuyAndHold     Strategy = "buy_and_hold"
)

// BacktestConfig holds the parameters of one backtest run. Invalid
// parameters are rejected before the simulation starts.
type BacktestConfig struct {
	Symbol             string    `json:"symbol" validate:"required"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required"`
	InitialCapital     float64   `json:"initial_capital" validate:"gt=0"`
	Strategy           Strategy  `json:"strategy" validate:"oneof=follow_ai high_confidence buy_and_hold"`
	SignalThreshold    float64   `json:"signal_threshold" validate:"gte=0,lte=100"`
	RiskPerTrade       float64   `json:"risk_per_trade" validate:"gt=0,lte=0.5"`
	TransactionCost    float64   `json:"transaction_cost_fraction" validate:"gte=0,lt=0.1"`
	MinConfluenceScore float64   `json:"min_confluence_score" validate:"gte=0,lte=100"`
	MinConfidence      float64   `json:"min_confidence" validate:"gte=0,lte=1"`
}

// BacktestResult holds the risk-adjusted performance of one run.
type BacktestResult struct {
	Symbol               string        `json:"symbol"`
	Strategy             Strategy      `json:"strategy"`
	TotalReturnPct       float64       `json:"total_return_pct"`
	CAGRPct              float64       `json:"cagr_pct"`
	SharpeRatio          float64       `json:"sharpe_ratio"`
	MaxDrawdownPct       float64       `json:"max_drawdown_pct"`
	WinRatePct           float64       `json:"win_rate_pct"`
	ProfitFactor         float64       `json:"profit_factor"`
	CalmarRatio          float64       `json:"calmar_ratio"`
	AvgReturnPerTradePct float64       `json:"avg_return_per_trade_pct"`
	TotalTrades          int           `json:"total_trades"`
	WinningTrades        int           `json:"winning_trades"`
	LosingTrades         int           `json:"losing_trades"`
	FinalValue           float64       `json:"final_value"`
	EquityCurve          []EquityPoint `json:"equity_curve"`
	TradeHistory         []TradeRecord `json:"trade_history"`
}
