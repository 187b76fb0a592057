package backtest

import (
	"fmt"
	"time"

	"signalforge/internal/indicator"
	"signalforge/internal/model"
)

// PositionState tracks a position through its lifecycle.
type PositionState string

const (
	StateOpen       PositionState = "OPEN"
	StatePartialTP1 PositionState = "PARTIAL_TP1"
	StatePartialTP2 PositionState = "PARTIAL_TP2"
	StateClosed     PositionState = "CLOSED"
)

// Exit reasons recorded on trade records.
const (
	ReasonStopLoss     = "stop_loss"
	ReasonTrailingStop = "trailing_stop"
	ReasonTakeProfit1  = "take_profit_1"
	ReasonTakeProfit2  = "take_profit_2"
	ReasonExhaustion   = "momentum_exhaustion"
	ReasonEndOfTest    = "end_of_test"
)

// Take-profit level multiples of the initial risk, and the fraction of
// the original position closed at each.
const (
	tp1RiskMultiple = 2.0
	tp2RiskMultiple = 3.0
	tp1Fraction     = 0.50
	tp2Fraction     = 0.25
)

// sharesEpsilon absorbs float residue when a position is fully closed.
const sharesEpsilon = 1e-9

// Position is one simulated position. It is owned by a single backtest
// run and mutated only through PositionManager transitions.
type Position struct {
	Symbol        string
	EntryPrice    float64
	EntryDate     time.Time
	Shares        float64
	InitialShares float64
	InitialRisk   float64
	StopLoss      float64
	TakeProfit1   float64
	TakeProfit2   float64
	TrailingStop  float64
	HighWater     float64
	State         PositionState
	RealizedPnL   float64

	breakEvenSet bool
	tp1Taken     bool
	tp2Taken     bool
	exhausted    bool
}

// PositionManager applies per-period transitions to a position. The
// same manager serves a whole backtest run; it holds configuration,
// not position state.
type PositionManager struct {
	costFraction float64
	trailingPct  float64
	rsiPeriod    int
	emaPeriod    int
}

// NewPositionManager creates a manager with the given round-trip
// transaction cost fraction.
func NewPositionManager(costFraction float64) *PositionManager {
	return &PositionManager{
		costFraction: costFraction,
		trailingPct:  0.05,
		rsiPeriod:    14,
		emaPeriod:    10,
	}
}

// Open creates a new position. Take-profit levels derive from the
// initial risk: TP1 at 1:2 and TP2 at 1:3 risk/reward.
func (m *PositionManager) Open(symbol string, price float64, date time.Time, shares, stopLoss float64) *Position {
	if stopLoss >= price || shares <= 0 {
		panic(fmt.Sprintf("backtest: invalid position open: price=%.4f stop=%.4f shares=%.4f", price, stopLoss, shares))
	}

	risk := price - stopLoss
	return &Position{
		Symbol:        symbol,
		EntryPrice:    price,
		EntryDate:     date,
		Shares:        shares,
		InitialShares: shares,
		InitialRisk:   risk,
		StopLoss:      stopLoss,
		TakeProfit1:   price + risk*tp1RiskMultiple,
		TakeProfit2:   price + risk*tp2RiskMultiple,
		State:         StateOpen,
	}
}

// Step evaluates all transitions for one simulated period, in priority
// order: stop-loss, trailing stop, TP2, TP1, break-even ratchet,
// momentum exhaustion. window is the candle history up to and
// including c, used for the exhaustion check. Returns the trade
// records created this period and the cash proceeds of any closes.
func (m *PositionManager) Step(p *Position, c model.Candle, window []model.Candle) ([]model.TradeRecord, float64) {
	if p.State == StateClosed {
		return nil, 0
	}

	var trades []model.TradeRecord
	var proceeds float64

	// 1. Stop-loss breach closes everything.
	if c.Low <= p.StopLoss {
		tr, pr := m.closeShares(p, p.Shares, p.StopLoss, c.Timestamp, ReasonStopLoss)
		return append(trades, tr), pr
	}

	// 2. Trailing stop, armed only after the position has been
	// profitable.
	if p.TrailingStop > 0 && c.Low <= p.TrailingStop {
		tr, pr := m.closeShares(p, p.Shares, p.TrailingStop, c.Timestamp, ReasonTrailingStop)
		return append(trades, tr), pr
	}

	// 3. Second take-profit: an additional 25% of the original size,
	// or whatever remains if an earlier exit already reduced below
	// that.
	if !p.tp2Taken && c.High >= p.TakeProfit2 {
		p.tp2Taken = true
		tr, pr := m.closeShares(p, minShares(p.InitialShares*tp2Fraction, p.Shares), p.TakeProfit2, c.Timestamp, ReasonTakeProfit2)
		trades = append(trades, tr)
		proceeds += pr
		if p.State != StateClosed {
			p.State = StatePartialTP2
		}
	}

	// 4. First take-profit: 50% of the original size.
	if !p.tp1Taken && p.State != StateClosed && c.High >= p.TakeProfit1 {
		p.tp1Taken = true
		tr, pr := m.closeShares(p, minShares(p.InitialShares*tp1Fraction, p.Shares), p.TakeProfit1, c.Timestamp, ReasonTakeProfit1)
		trades = append(trades, tr)
		proceeds += pr
		if p.State != StateClosed && !p.tp2Taken {
			p.State = StatePartialTP1
		}
	}

	// 5. Break-even ratchet: once unrealized profit reaches the
	// initial risk (1:1), the stop moves to entry. One-way, never
	// reversed.
	if !p.breakEvenSet && c.High >= p.EntryPrice+p.InitialRisk {
		if p.StopLoss < p.EntryPrice {
			p.StopLoss = p.EntryPrice
		}
		p.breakEvenSet = true
	}

	// 6. Momentum exhaustion: overbought oscillator rolling over, or
	// price closing under the short-term trend average. Closes half
	// of what remains, once per position.
	if p.State != StateClosed && !p.exhausted && m.exhaustionExit(window) {
		p.exhausted = true
		tr, pr := m.closeShares(p, p.Shares*0.5, c.Close, c.Timestamp, ReasonExhaustion)
		trades = append(trades, tr)
		proceeds += pr
	}

	// Arm or advance the trailing stop once the period closes in
	// profit.
	if p.State != StateClosed && c.Close > p.EntryPrice {
		if c.Close > p.HighWater {
			p.HighWater = c.Close
		}
		trail := p.HighWater * (1 - m.trailingPct)
		if trail > p.TrailingStop {
			p.TrailingStop = trail
		}
	}

	return trades, proceeds
}

// ForceClose liquidates whatever remains at the given price. Used at
// the end of a simulation.
func (m *PositionManager) ForceClose(p *Position, price float64, date time.Time) (model.TradeRecord, float64) {
	return m.closeShares(p, p.Shares, price, date, ReasonEndOfTest)
}

// closeShares realizes part or all of the position. Closing more
// shares than held is a state-machine bug and fails loudly rather than
// being clamped.
func (m *PositionManager) closeShares(p *Position, shares, price float64, date time.Time, reason string) (model.TradeRecord, float64) {
	if shares <= 0 || shares > p.Shares+sharesEpsilon {
		panic(fmt.Sprintf("backtest: closing %.6f shares of %s with only %.6f held", shares, p.Symbol, p.Shares))
	}

	proceeds := shares * price * (1 - m.costFraction)
	// Per-share profit nets out both the entry and exit cost slices.
	profit := (price*(1-m.costFraction) - p.EntryPrice*(1+m.costFraction)) * shares

	p.Shares -= shares
	if p.Shares < sharesEpsilon {
		p.Shares = 0
		p.State = StateClosed
	}
	p.RealizedPnL += profit

	return model.TradeRecord{
		Symbol:     p.Symbol,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		Shares:     shares,
		Profit:     profit,
		IsWin:      profit > 0,
		Reason:     reason,
		ExitDate:   date,
	}, proceeds
}

func minShares(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// exhaustionExit reports whether momentum has rolled over: RSI above 70
// and falling, or the close dropping under the short-term EMA.
func (m *PositionManager) exhaustionExit(window []model.Candle) bool {
	if len(window) < m.rsiPeriod+2 {
		return false
	}

	rsiNow := indicator.RSI(window, m.rsiPeriod)
	rsiPrev := indicator.RSI(window[:len(window)-1], m.rsiPeriod)
	if rsiNow > 70 && rsiNow < rsiPrev {
		return true
	}

	return window[len(window)-1].Close < indicator.EMA(window, m.emaPeriod)
}
