package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
	"github.com/kovalyov-valentin/intel-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/storage"
)

type CategoryLister interface {
	Categories(ctx context.Context) ([]model.Category, error)
}

func ViewCmdListCategories(lister CategoryLister) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		categories, err := lister.Categories(ctx)
		if err != nil {
			return err
		}

		lines := lo.Map(categories, func(c model.Category, _ int) string {
			return fmt.Sprintf("`%d` %s %s", c.ID, markup.Bold(c.Name), markup.EscapeForMarkdown(c.Color))
		})

		return botkit.ReplyMarkdown(bot, update, fmt.Sprintf(
			"Категории \\(всего %d\\):\n\n%s",
			len(categories),
			strings.Join(lines, "\n"),
		))
	}
}

type CategoryAdder interface {
	AddCategory(ctx context.Context, category model.Category) (int64, error)
}

const addCategoryUsage = `Использование: /addcategory {"name": "Malware", "color": "#ff00ff"}`

func ViewCmdAddCategory(adder CategoryAdder) botkit.ViewFunc {
	type addCategoryArgs struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		args, err := botkit.ParseJSON[addCategoryArgs](update.Message.CommandArguments())
		if err != nil || strings.TrimSpace(args.Name) == "" || (args.Color != "" && !validColor(args.Color)) {
			return botkit.Reply(bot, update, addCategoryUsage)
		}

		id, err := adder.AddCategory(ctx, model.Category{
			Name:    strings.TrimSpace(args.Name),
			Color:   strings.ToLower(args.Color),
			Enabled: true,
		})
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return botkit.Reply(bot, update, "Категория с таким именем уже есть")
			}
			return err
		}

		return botkit.ReplyMarkdown(bot, update, fmt.Sprintf("Категория добавлена с ID: `%d`", id))
	}
}

// #rrggbb
func validColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}

	for _, c := range strings.ToLower(color[1:]) {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}

	return true
}

type CategoryToggler interface {
	SetEnabled(ctx context.Context, id int64, enabled bool) error
}

// Источники выключенной категории не опрашиваются
func ViewCmdSetCategoryEnabled(toggler CategoryToggler, enabled bool) botkit.ViewFunc {
	return func(ctx context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		id, err := botkit.ParseID(update.Message.CommandArguments())
		if err != nil {
			return botkit.Reply(bot, update, "Укажите ID категории: /"+update.Message.Command()+" 3")
		}

		if err := toggler.SetEnabled(ctx, id, enabled); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return botkit.Reply(bot, update, fmt.Sprintf("Категория %d не найдена", id))
			}
			return err
		}

		return botkit.Reply(bot, update, fmt.Sprintf("Категория %d %s", id, lo.Ternary(enabled, "включена", "выключена")))
	}
}
