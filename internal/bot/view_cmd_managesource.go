package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

type SourceManager interface {
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
}

// /enablesource и /disablesource
func ViewCmdSetSourceEnabled(manager SourceManager, enabled bool) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		id, err := botkit.ParseID(update.Message.CommandArguments())
		if err != nil {
			return botkit.Reply(bot, update, "Укажите ID источника: /"+update.Message.Command()+" 42")
		}

		if err := manager.SetEnabled(ctx, id, enabled); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return botkit.Reply(bot, update, fmt.Sprintf("Источник %d не найден", id))
			}
			return err
		}

		state := "выключен"
		if enabled {
			state = "включен"
		}

		return botkit.Reply(bot, update, fmt.Sprintf("Источник %d %s", id, state))
	}
}

// Статьи удаленного источника остаются в ленте
func ViewCmdDeleteSource(manager SourceManager) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		id, err := botkit.ParseID(update.Message.CommandArguments())
		if err != nil {
			return botkit.Reply(bot, update, "Укажите ID источника: /deletesource 42")
		}

		if err := manager.Delete(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return botkit.Reply(bot, update, fmt.Sprintf("Источник %d не найден", id))
			}
			return err
		}

		return botkit.Reply(bot, update, fmt.Sprintf("Источник %d удален", id))
	}
}
