package bot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/seed"
)

const addSourceUsage = `Использование: /addsource {"name": "CISA", "url": "https://...", "category": "Cybersecurity"}`

// Добавление идет через сидер, чтобы категория создалась так же, как при старте
type SourceSeeder interface {
	Seed(ctx context.Context, seeds []model.SourceSeed) (seed.Result, error)
}

type SourceFinder interface {
	SourceByURL(ctx context.Context, url string) (*model.Source, error)
}

func ViewCmdAddSource(seeder SourceSeeder, finder SourceFinder) botkit.ViewFunc {
	type addSourceArgs struct {
		Name     string `json:"name"`
		URL      string `json:"url"`
		Category string `json:"category"`
		Color    string `json:"color"`
	}

	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addSourceArgs](update.Message.CommandArguments())
		if err != nil || strings.TrimSpace(args.Name) == "" || !validFeedURL(args.URL) {
			return botkit.Reply(bot, update, addSourceUsage)
		}

		res, err := seeder.Seed(ctx, []model.SourceSeed{{
			Name:     strings.TrimSpace(args.Name),
			URL:      strings.TrimSpace(args.URL),
			Category: strings.TrimSpace(args.Category),
			Color:    args.Color,
		}})
		if err != nil {
			return err
		}

		if res.SourcesAdded == 0 {
			return botkit.Reply(bot, update, "Источник с таким URL уже есть")
		}

		source, err := finder.SourceByURL(ctx, strings.TrimSpace(args.URL))
		if err != nil {
			return err
		}
		if source == nil {
			return fmt.Errorf("source %s disappeared right after insert", args.URL)
		}

		return botkit.ReplyMarkdown(bot, update, fmt.Sprintf(
			"Источник добавлен с ID: `%d`\\. Используйте этот ID для управления источником\\.",
			source.ID,
		))
	}
}

func validFeedURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
