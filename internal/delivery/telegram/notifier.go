package telegram

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/telebot.v3"

	"breakout-scanner/config"
	"breakout-scanner/internal/dto"
	"breakout-scanner/pkg/logger"
	"breakout-scanner/pkg/utils"
)

// Notifier pushes completed scan results to a configured chat. It is
// optional: without a bot token the service runs without notifications.
type Notifier struct {
	cfg *config.Config
	log *logger.Logger
	bot *telebot.Bot
}

func NewNotifier(cfg *config.Config, log *logger.Logger, bot *telebot.Bot) *Notifier {
	return &Notifier{
		cfg: cfg,
		log: log,
		bot: bot,
	}
}

func (n *Notifier) NotifyScanResult(ctx context.Context, entry dto.QueueEntry) {
	if n.bot == nil || n.cfg.Telegram.ChatID == 0 {
		return
	}
	if entry.Result == nil {
		return
	}

	message := n.formatResult(entry)
	_, err := n.bot.Send(&telebot.User{ID: n.cfg.Telegram.ChatID}, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	if err != nil {
		n.log.WarnContext(ctx, "Failed to send scan notification",
			logger.StringField("symbol", entry.Symbol),
			logger.ErrorField(err))
	}
}

func (n *Notifier) formatResult(entry dto.QueueEntry) string {
	result := entry.Result

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *%s* scan completed\n", entry.Symbol))
	sb.WriteString(fmt.Sprintf("Signals: %d | Lookback: %d days\n", len(result.Signals), result.LookbackDays))

	if opt := result.Optimization; opt != nil {
		sb.WriteString(fmt.Sprintf("Best SMA period: %d\n", opt.SMAPeriod))
		sb.WriteString(fmt.Sprintf("Total P/L: %s over %.1f signals\n",
			utils.FormatPercentage(opt.TotalPL), opt.TotalSignals))
	}

	for i, signal := range result.Signals {
		if i >= 3 {
			sb.WriteString(fmt.Sprintf("… and %d more signals\n", len(result.Signals)-i))
			break
		}
		sb.WriteString(fmt.Sprintf("• %s breakout at %.2f (weight gap %.3f)\n",
			signal.Breakout.Date.Format("2006-01-02"),
			signal.Breakout.Price,
			signal.Breakout.WeightDiff))
	}
	return sb.String()
}
