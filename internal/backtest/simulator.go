// Package backtest replays the scoring pipeline over candle history,
// simulating position lifecycles and deriving risk-adjusted
// performance metrics.
package backtest

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalforge/internal/engine"
	"signalforge/internal/indicator"
	"signalforge/internal/model"
)

var validate = validator.New()

// ErrNoHistory is returned when the requested backtest range holds no
// candles after warm-up.
var ErrNoHistory = errors.New("no candle history in backtest range")

// Stop distance in ATR multiples for simulated entries.
const stopATRMultiple = 1.5

// High-confidence strategy floor; the configured MinConfidence applies
// when it is stricter.
const highConfidenceFloor = 0.75

// Fallback stop distance when the window is too short for an ATR,
// as a fraction of the entry price.
const fallbackStopPct = 0.05

// Evaluation windows are capped so indicator cost stays bounded as the
// simulation advances. The cap must leave the resampled
// higher-timeframe view enough candles to evaluate, with warm-up
// headroom on top, or replayed scoring would never see the alignment
// context that live scoring does.
const maxWindow = engine.ResampleFactor*indicator.MinCandles + indicator.MinCandles

// ValidateConfig rejects invalid backtest parameters before any
// simulation work starts.
func ValidateConfig(cfg model.BacktestConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid backtest config: %w", err)
	}
	if !cfg.StartDate.Before(cfg.EndDate) {
		return errors.New("invalid backtest config: start date must be before end date")
	}
	return nil
}

// Simulator replays one symbol's candle history against a strategy.
// Runs are independent: a Simulator holds no state between Run calls,
// so backtests across symbols can be driven in parallel by the caller.
type Simulator struct {
	cfg     model.BacktestConfig
	engine  *engine.Engine
	manager *PositionManager
	periods indicator.Periods
	logger  zerolog.Logger
}

// NewSimulator validates the config and builds a simulator around the
// given evaluation engine.
func NewSimulator(cfg model.BacktestConfig, eng *engine.Engine) (*Simulator, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:     cfg,
		engine:  eng,
		manager: NewPositionManager(cfg.TransactionCost),
		periods: indicator.DefaultPeriods(),
		logger:  log.With().Str("component", "backtest").Str("symbol", cfg.Symbol).Logger(),
	}, nil
}

// Run simulates the configured strategy over the candle history. The
// candles must be ordered ascending by timestamp; candles before the
// start date serve as indicator warm-up. Periods within one run are
// strictly sequential because position state and cash are.
func (s *Simulator) Run(candles []model.Candle) (*model.BacktestResult, error) {
	cash := s.cfg.InitialCapital
	var pos *Position
	var curve []model.EquityPoint
	var trades []model.TradeRecord
	var lastClose float64

	for i, c := range candles {
		if c.Timestamp.Before(s.cfg.StartDate) || c.Timestamp.After(s.cfg.EndDate) {
			continue
		}

		// Duplicate timestamps are a data condition, not a sequencing
		// bug. Skip them so the equity-curve invariant stays reserved
		// for the latter.
		if len(curve) > 0 && !c.Timestamp.After(curve[len(curve)-1].Date) {
			s.logger.Warn().Time("date", c.Timestamp).Msg("Skipping candle with duplicate timestamp")
			continue
		}

		start := i + 1 - maxWindow
		if start < 0 {
			start = 0
		}
		window := candles[start : i+1]
		lastClose = c.Close

		// Manage the open position before considering a new entry.
		// Buy-and-hold never manages exits; it holds to the end.
		if pos != nil && pos.State != StateClosed && s.cfg.Strategy != model.StrategyBuyAndHold {
			periodTrades, proceeds := s.manager.Step(pos, c, window)
			trades = append(trades, periodTrades...)
			cash += proceeds
		}

		if pos == nil || (pos.State == StateClosed && s.cfg.Strategy != model.StrategyBuyAndHold) {
			if opened := s.tryEnter(window, c, &cash); opened != nil {
				pos = opened
			}
		}

		equity := cash
		if pos != nil && pos.State != StateClosed {
			equity += pos.Shares * c.Close
		}
		curve = appendEquity(curve, model.EquityPoint{Date: c.Timestamp, TotalValue: equity})
	}

	if len(curve) == 0 {
		return nil, ErrNoHistory
	}

	// Force-close whatever is still open at the end of the run.
	if pos != nil && pos.State != StateClosed {
		tr, proceeds := s.manager.ForceClose(pos, lastClose, curve[len(curve)-1].Date)
		trades = append(trades, tr)
		cash += proceeds
		curve[len(curve)-1].TotalValue = cash
	}

	res := ComputeMetrics(curve, trades, s.cfg.InitialCapital)
	res.Symbol = s.cfg.Symbol
	res.Strategy = s.cfg.Strategy

	s.logger.Info().
		Int("trades", res.TotalTrades).
		Float64("total_return_pct", res.TotalReturnPct).
		Float64("max_drawdown_pct", res.MaxDrawdownPct).
		Msg("Backtest complete")

	return &res, nil
}

// tryEnter opens a position when the strategy's gates pass and the
// remaining cash covers both the notional and the transaction cost.
func (s *Simulator) tryEnter(window []model.Candle, c model.Candle, cash *float64) *Position {
	if !s.entrySignal(window, c) {
		return nil
	}

	price := c.Close
	atr := indicator.ATR(window, s.periods.ATR)
	stop := price - stopATRMultiple*atr
	if atr == 0 {
		// Too little warm-up for an ATR. A fixed-percentage stop keeps
		// entries from deferring until the ATR window fills.
		stop = price * (1 - fallbackStopPct)
	}
	if stop <= 0 || stop >= price {
		return nil
	}

	shares := s.positionSize(price, stop, *cash)
	if shares <= 0 {
		return nil
	}

	cost := shares * price * (1 + s.cfg.TransactionCost)
	if cost > *cash {
		return nil
	}
	*cash -= cost

	s.logger.Debug().
		Float64("price", price).
		Float64("stop", stop).
		Float64("shares", shares).
		Time("date", c.Timestamp).
		Msg("Opening position")

	return s.manager.Open(s.cfg.Symbol, price, c.Timestamp, shares, stop)
}

// entrySignal applies the strategy's entry gates for the current
// period.
func (s *Simulator) entrySignal(window []model.Candle, c model.Candle) bool {
	switch s.cfg.Strategy {
	case model.StrategyBuyAndHold:
		// Single entry at the first simulated period.
		return true
	case model.StrategyFollowAI, model.StrategyHighConfidence:
		rec := s.engine.Evaluate(s.cfg.Symbol, window, 0)
		if rec.Action != model.ActionBuy {
			return false
		}
		if rec.SignalStrength < s.cfg.SignalThreshold {
			return false
		}
		if rec.CompositeScore < s.cfg.MinConfluenceScore {
			return false
		}
		minConf := s.cfg.MinConfidence
		if s.cfg.Strategy == model.StrategyHighConfidence && minConf < highConfidenceFloor {
			minConf = highConfidenceFloor
		}
		return rec.Confidence >= minConf
	default:
		return false
	}
}

// positionSize risks the configured fraction of cash per trade, capped
// by what the cash can actually buy including the entry cost.
func (s *Simulator) positionSize(price, stop, cash float64) float64 {
	riskPerShare := price - stop
	if riskPerShare <= 0 || price <= 0 {
		return 0
	}

	shares := cash * s.cfg.RiskPerTrade / riskPerShare
	if s.cfg.Strategy == model.StrategyBuyAndHold {
		// Buy-and-hold commits the full capital.
		shares = cash / (price * (1 + s.cfg.TransactionCost))
	}

	maxAffordable := cash / (price * (1 + s.cfg.TransactionCost))
	if shares > maxAffordable {
		shares = maxAffordable
	}
	return shares
}

// appendEquity enforces the monotonic-date invariant of the equity
// curve. A violation is a sequencing bug in the simulator itself.
func appendEquity(curve []model.EquityPoint, p model.EquityPoint) []model.EquityPoint {
	if len(curve) > 0 && !p.Date.After(curve[len(curve)-1].Date) {
		panic(fmt.Sprintf("backtest: out-of-order equity point %s after %s",
			p.Date.Format("2006-01-02 15:04:05"), curve[len(curve)-1].Date.Format("2006-01-02 15:04:05")))
	}
	return append(curve, p)
}
