package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
	"github.com/kovalyov-valentin/intel-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

type SourceLister interface {
	Sources(ctx context.Context) ([]model.Source, error)
}

func ViewCmdListSources(lister SourceLister) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		sources, err := lister.Sources(ctx)
		if err != nil {
			return err
		}

		if len(sources) == 0 {
			return botkit.Reply(bot, update, "Источников пока нет")
		}

		var (
			sourceInfos = lo.Map(sources, func(source model.Source, _ int) string {
				return formatSource(source)
			})
			msgText = fmt.Sprintf(
				"Список источников \\(всего %d\\):\n\n%s",
				len(sources),
				strings.Join(sourceInfos, "\n\n"),
			)
		)

		return botkit.ReplyMarkdown(bot, update, msgText)
	}
}

func formatSource(source model.Source) string {
	status := "🟢"
	if !source.Enabled {
		status = "⚫"
	}

	return fmt.Sprintf(
		"%s %s\nID: `%d`\nURL фида: %s",
		status,
		markup.Bold(source.Name),
		source.ID,
		markup.EscapeForMarkdown(source.FeedURL),
	)
}
