package model

import (
	"time"
)

// Candle represents a single price candle, ordered ascending by timestamp.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// Signal is the normalized directional reading of a single indicator.
type Signal string

const (
	SignalBuy     Signal = "buy"
	SignalSell    Signal = "sell"
	SignalNeutral Signal = "neutral"
)

// Action is the recommended action for a symbol.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IndicatorReading is one indicator's contribution to the aggregate.
// Produced fresh on every evaluation; never mutated afterwards.
type IndicatorReading struct {
	Name       string  `json:"name"`
	RawValue   float64 `json:"raw_value"`
	Signal     Signal  `json:"signal"`
	Weight     float64 `json:"weight"`
	KeyPattern bool    `json:"key_pattern,omitempty"`
}

// TimeframeContext carries the higher-timeframe aggregate strength used
// to judge cross-timeframe alignment. HasHigher is false when the candle
// window was too short to resample a meaningful higher timeframe.
type TimeframeContext struct {
	HigherStrength float64
	HasHigher      bool
}

// SignalAggregate is the weighted sum of all indicator readings.
type SignalAggregate struct {
	SignalStrength    float64 `json:"signal_strength"` // [-100, 100]
	BuyScore          float64 `json:"buy_score"`
	SellScore         float64 `json:"sell_score"`
	BullishCount      int     `json:"bullish_count"`
	BearishCount      int     `json:"bearish_count"`
	NeutralCount      int     `json:"neutral_count"`
	ConsensusRatio    float64 `json:"consensus_ratio"`
	QualityMultiplier float64 `json:"quality_multiplier"`
	TimeframesAgree   bool    `json:"timeframes_agree"`
	StrongAlignment   bool    `json:"strong_alignment"`
	KeyPattern        bool    `json:"key_pattern"`
}

// TotalCount returns the number of indicators that were evaluated.
func (a SignalAggregate) TotalCount() int {
	return a.BullishCount + a.BearishCount + a.NeutralCount
}

// Recommendation is the stateless output of one evaluation. It is
// consumed immediately by the caller or the backtest loop.
type Recommendation struct {
	Symbol          string    `json:"symbol"`
	Action          Action    `json:"action"`
	Priority        Priority  `json:"priority"`
	SignalStrength  float64   `json:"signal_strength"`
	Confidence      float64   `json:"confidence"`
	CompositeScore  float64   `json:"composite_score"`
	AllocationDrift float64   `json:"allocation_drift"`
	Reason          string    `json:"reason"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
}

// TradeRecord is created exactly once per position close, partial or
// full, and never mutated after creation.
type TradeRecord struct {
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Shares     float64   `json:"shares"`
	Profit     float64   `json:"profit"`
	IsWin      bool      `json:"is_win"`
	Reason     string    `json:"reason"`
	ExitDate   time.Time `json:"exit_date"`
}

// EquityPoint is one sample of total portfolio value. The sequence is
// appended monotonically by date.
type EquityPoint struct {
	Date       time.Time `json:"date"`
	TotalValue float64   `json:"total_value"`
}
