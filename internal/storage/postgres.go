// Package storage persists recommendations and backtest summaries to
// PostgreSQL. The scoring core never depends on it; callers decide
// whether results are kept.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"signalforge/internal/model"
)

// Store wraps a PostgreSQL connection.
type Store struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New opens a connection and ensures the schema exists.
func New(params ConnectionParams) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &Store{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS recommendations (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			priority TEXT NOT NULL,
			signal_strength DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			composite_score DOUBLE PRECISION NOT NULL,
			allocation_drift DOUBLE PRECISION NOT NULL,
			reason TEXT,
			evaluated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS backtest_runs (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			strategy TEXT NOT NULL,
			total_return_pct DOUBLE PRECISION NOT NULL,
			cagr_pct DOUBLE PRECISION NOT NULL,
			sharpe_ratio DOUBLE PRECISION NOT NULL,
			max_drawdown_pct DOUBLE PRECISION NOT NULL,
			win_rate_pct DOUBLE PRECISION NOT NULL,
			profit_factor DOUBLE PRECISION NOT NULL,
			calmar_ratio DOUBLE PRECISION NOT NULL,
			total_trades INT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// SaveRecommendation inserts one evaluation result.
func (s *Store) SaveRecommendation(rec model.Recommendation) error {
	_, err := s.Exec(`
		INSERT INTO recommendations (
			symbol, action, priority, signal_strength, confidence,
			composite_score, allocation_drift, reason, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		rec.Symbol, string(rec.Action), string(rec.Priority), rec.SignalStrength,
		rec.Confidence, rec.CompositeScore, rec.AllocationDrift, rec.Reason, rec.EvaluatedAt)
	return err
}

// SaveBacktest inserts one backtest summary.
func (s *Store) SaveBacktest(res *model.BacktestResult) error {
	_, err := s.Exec(`
		INSERT INTO backtest_runs (
			symbol, strategy, total_return_pct, cagr_pct, sharpe_ratio,
			max_drawdown_pct, win_rate_pct, profit_factor, calmar_ratio, total_trades
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		res.Symbol, string(res.Strategy), res.TotalReturnPct, res.CAGRPct, res.SharpeRatio,
		res.MaxDrawdownPct, res.WinRatePct, res.ProfitFactor, res.CalmarRatio, res.TotalTrades)
	return err
}

// RecentRecommendations returns the latest stored recommendations for
// a symbol, newest first.
func (s *Store) RecentRecommendations(symbol string, limit int) ([]model.Recommendation, error) {
	rows, err := s.Query(`
		SELECT symbol, action, priority, signal_strength, confidence,
		       composite_score, allocation_drift, reason, evaluated_at
		FROM recommendations
		WHERE symbol = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []model.Recommendation
	for rows.Next() {
		var rec model.Recommendation
		var action, priority string
		if err := rows.Scan(&rec.Symbol, &action, &priority, &rec.SignalStrength,
			&rec.Confidence, &rec.CompositeScore, &rec.AllocationDrift,
			&rec.Reason, &rec.EvaluatedAt); err != nil {
			return nil, err
		}
		rec.Action = model.Action(action)
		rec.Priority = model.Priority(priority)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
