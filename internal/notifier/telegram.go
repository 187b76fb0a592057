// Package notifier delivers evaluation results over Telegram.
package notifier

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalforge/internal/model"
)

// Notifier sends formatted messages to a Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// New creates a Telegram notifier for the given bot token and chat.
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notifier").Logger(),
	}, nil
}

// SendRecommendation pushes one evaluation result to the chat.
func (n *Notifier) SendRecommendation(rec model.Recommendation) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s* %s\n", rec.Symbol, actionEmoji(rec.Action))
	fmt.Fprintf(&b, "Action: *%s* (%s priority)\n", strings.ToUpper(string(rec.Action)), rec.Priority)
	fmt.Fprintf(&b, "Signal strength: %.1f\n", rec.SignalStrength)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", rec.Confidence*100)
	fmt.Fprintf(&b, "Composite score: %.1f\n", rec.CompositeScore)
	if rec.AllocationDrift != 0 {
		fmt.Fprintf(&b, "Allocation drift: %+.1f%%\n", rec.AllocationDrift)
	}
	if rec.Reason != "" {
		fmt.Fprintf(&b, "_%s_\n", rec.Reason)
	}

	return n.send(b.String())
}

// SendBacktestSummary pushes a backtest result summary to the chat.
func (n *Notifier) SendBacktestSummary(res *model.BacktestResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*Backtest: %s* (%s)\n", res.Symbol, res.Strategy)
	fmt.Fprintf(&b, "Total return: %+.2f%%\n", res.TotalReturnPct)
	fmt.Fprintf(&b, "CAGR: %+.2f%%\n", res.CAGRPct)
	fmt.Fprintf(&b, "Sharpe: %.2f\n", res.SharpeRatio)
	fmt.Fprintf(&b, "Max drawdown: %.2f%%\n", res.MaxDrawdownPct)
	fmt.Fprintf(&b, "Win rate: %.1f%% over %d trades\n", res.WinRatePct, res.TotalTrades)
	fmt.Fprintf(&b, "Profit factor: %.2f\n", res.ProfitFactor)

	return n.send(b.String())
}

func (n *Notifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("Error sending telegram message")
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

func actionEmoji(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "\U0001F7E2" // green circle
	case model.ActionSell:
		return "\U0001F534" // red circle
	default:
		return "⚪" // white circle
	}
}
