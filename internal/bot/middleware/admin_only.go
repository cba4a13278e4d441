package middleware

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
)

// Пропускает команду дальше, только если автор админ чата chatID
func AdminOnly(chatID int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		if update.Message.From == nil {
			return nil
		}

		admins, err := bot.GetChatAdministrators(
			tgbotapi.ChatAdministratorsConfig{
				ChatConfig: tgbotapi.ChatConfig{
					ChatID: chatID,
				},
			},
		)
		if err != nil {
			return fmt.Errorf("get admins of %d: %w", chatID, err)
		}

		for _, admin := range admins {
			if admin.User != nil && admin.User.ID == update.Message.From.ID {
				return next(ctx, bot, update)
			}
		}

		log.WithFields(log.Fields{
			"user_id": update.Message.From.ID,
			"cmd":     update.Message.Command(),
		}).Warn("admin command rejected")

		return botkit.Reply(bot, update, "У вас нет прав для выполнения этой команды")
	}
}
