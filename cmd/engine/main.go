package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalforge/internal/backtest"
	"signalforge/internal/config"
	"signalforge/internal/engine"
	"signalforge/internal/model"
	"signalforge/internal/notifier"
	"signalforge/internal/provider"
	"signalforge/internal/storage"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting signal engine")
	printConfig(cfg)

	// 3. Setup the data client and evaluation engine
	client := provider.NewClient(provider.ClientOptions{
		APIKey:         cfg.DataAPIKey,
		BaseURL:        cfg.DataBaseURL,
		Interval:       cfg.Interval,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.RequestsPerSec,
	})
	eng := engine.NewDefault(cfg.SignalThreshold)

	// 4. Optional collaborators
	var store *storage.Store
	if cfg.EnableStorage {
		store, err = storage.New(storage.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer store.Close()
	}

	var tg *notifier.Notifier
	if cfg.EnableTelegram {
		tg, err = notifier.New(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create telegram notifier")
		}
	}

	// 5. Run backtesting if enabled
	if cfg.EnableBacktest {
		runBacktest(ctx, client, eng, cfg, store, tg)
	}

	// 6. Run live evaluation
	runLiveEvaluation(ctx, client, eng, cfg, store, tg)
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
		os.Exit(0)
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Str("Symbol", cfg.Symbol).
		Str("Interval", cfg.Interval).
		Int("Lookback", cfg.Lookback).
		Str("Strategy", cfg.Strategy).
		Float64("SignalThreshold", cfg.SignalThreshold).
		Float64("RiskPerTrade", cfg.RiskPerTrade).
		Bool("EnableBacktest", cfg.EnableBacktest).
		Bool("EnableStorage", cfg.EnableStorage).
		Bool("EnableTelegram", cfg.EnableTelegram).
		Msg("Configuration loaded")
}

// runBacktest replays the configured strategy over historical candles
func runBacktest(ctx context.Context, client *provider.Client, eng *engine.Engine, cfg *config.Config, store *storage.Store, tg *notifier.Notifier) {
	log.Info().Msg("Running backtest...")

	btCfg := model.BacktestConfig{
		Symbol:             cfg.Symbol,
		StartDate:          cfg.BacktestStart,
		EndDate:            cfg.BacktestEnd,
		InitialCapital:     cfg.InitialCapital,
		Strategy:           model.Strategy(cfg.Strategy),
		SignalThreshold:    cfg.SignalThreshold,
		RiskPerTrade:       cfg.RiskPerTrade,
		TransactionCost:    cfg.TransactionCost,
		MinConfluenceScore: cfg.MinConfluenceScore,
		MinConfidence:      cfg.MinConfidence,
	}

	sim, err := backtest.NewSimulator(btCfg, eng)
	if err != nil {
		log.Error().Err(err).Msg("Invalid backtest configuration")
		return
	}

	candles, err := client.GetHistory(ctx, cfg.Symbol, cfg.Lookback)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch backtest history")
		return
	}

	res, err := sim.Run(candles)
	if err != nil {
		if errors.Is(err, backtest.ErrNoHistory) {
			log.Warn().Msg("No candles in backtest range")
			return
		}
		log.Error().Err(err).Msg("Backtest failed")
		return
	}

	fmt.Println(formatBacktest(res))

	if store != nil {
		if err := store.SaveBacktest(res); err != nil {
			log.Error().Err(err).Msg("Failed to save backtest result")
		}
	}
	if tg != nil {
		if err := tg.SendBacktestSummary(res); err != nil {
			log.Error().Err(err).Msg("Failed to send backtest summary")
		}
	}
}

// runLiveEvaluation scores the latest candle history once and reports
func runLiveEvaluation(ctx context.Context, client *provider.Client, eng *engine.Engine, cfg *config.Config, store *storage.Store, tg *notifier.Notifier) {
	log.Info().Msg("Running live evaluation...")

	candles, err := client.GetHistory(ctx, cfg.Symbol, cfg.Lookback)
	if err != nil {
		if errors.Is(err, provider.ErrNoData) {
			log.Warn().Str("symbol", cfg.Symbol).Msg("Provider returned no data")
			return
		}
		log.Error().Err(err).Msg("Failed to fetch candles")
		return
	}

	rec := eng.Evaluate(cfg.Symbol, candles, 0)
	fmt.Println(formatRecommendation(rec))

	if store != nil {
		if err := store.SaveRecommendation(rec); err != nil {
			log.Error().Err(err).Msg("Failed to save recommendation")
		}
	}
	if tg != nil {
		if err := tg.SendRecommendation(rec); err != nil {
			log.Error().Err(err).Msg("Failed to send recommendation")
		}
	}
}

func formatRecommendation(rec model.Recommendation) string {
	return fmt.Sprintf(
		"=== %s ===\nAction:          %s (%s priority)\nSignal strength: %.1f\nConfidence:      %.0f%%\nComposite score: %.1f\nReason:          %s",
		rec.Symbol, rec.Action, rec.Priority, rec.SignalStrength,
		rec.Confidence*100, rec.CompositeScore, rec.Reason)
}

func formatBacktest(res *model.BacktestResult) string {
	return fmt.Sprintf(
		"=== Backtest %s (%s) ===\nTotal return:  %+.2f%%\nCAGR:          %+.2f%%\nSharpe:        %.2f\nMax drawdown:  %.2f%%\nWin rate:      %.1f%% (%d trades)\nProfit factor: %.2f\nCalmar:        %.2f",
		res.Symbol, res.Strategy, res.TotalReturnPct, res.CAGRPct, res.SharpeRatio,
		res.MaxDrawdownPct, res.WinRatePct, res.TotalTrades, res.ProfitFactor, res.CalmarRatio)
}
