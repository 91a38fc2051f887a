package reporter

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-autoapply/internal/models"
)

// TelegramReporter pushes attempt outcomes to the operator's chat.
// Optional: a nil reporter is silently skipped by callers.
type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// NotifyOutcome reports the terminal result of a queue item.
func (t *TelegramReporter) NotifyOutcome(item *models.QueueItem) error {
	var text string
	switch item.Status {
	case models.StatusCompleted:
		text = fmt.Sprintf(
			"✅ <b>Application submitted</b>\n"+
				"Job: %s\n"+
				"Attempts: %d",
			item.JobID, item.AttemptCount)
	case models.StatusFailed:
		lastErr := ""
		if item.LastError != nil {
			lastErr = *item.LastError
		}
		text = fmt.Sprintf(
			"❌ <b>Application failed</b>\n"+
				"Job: %s\n"+
				"Attempts: %d/%d\n"+
				"Error: %s",
			item.JobID, item.AttemptCount, item.MaxAttempts, lastErr)
	default:
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	_, err := t.bot.Send(msg)
	return err
}
