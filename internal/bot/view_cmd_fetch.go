package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
	"github.com/kovalyov-valentin/intel-feed/internal/scheduler"
)

type FetchTrigger interface {
	TriggerFetch(ctx context.Context) error
}

// Ручной запуск цикла сбора. Цикл не привязан к таймауту команды
func ViewCmdFetch(trigger FetchTrigger) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		if err := botkit.Reply(bot, update, "Запускаю сбор лент"); err != nil {
			return err
		}

		go func() {
			err := trigger.TriggerFetch(context.WithoutCancel(ctx))

			text := "Сбор лент завершен"
			switch {
			case errors.Is(err, scheduler.ErrAlreadyRunning):
				text = "Сбор уже идет"
			case err != nil:
				text = "Сбор завершился с ошибкой: " + err.Error()
			}

			if err := botkit.Reply(bot, update, text); err != nil {
				log.WithError(err).Warn("failed to report fetch result")
			}
		}()

		return nil
	}
}
