package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
// Replies go back to the chat the command came from.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.bot.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			t.logger.Info().Msg("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			t.logger.Info().Str("command", text).Int64("chat_id", update.Message.Chat.ID).Msg("received command")

			reply := handler(text)
			if reply == "" {
				continue
			}
			if err := t.sendTo(update.Message.Chat.ID, reply); err != nil {
				t.logger.Error().Err(err).Msg("send reply")
			}
		}
	}
}
