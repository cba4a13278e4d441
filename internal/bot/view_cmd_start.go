package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit"
)

const helpText = `Бот сводки угроз.

/listsources - список источников
/listcategories - список категорий
/addsource {"name": "...", "url": "...", "category": "..."} - добавить источник
/addcategory {"name": "...", "color": "#rrggbb"} - добавить категорию
/enablesource ID, /disablesource ID - включить или выключить источник
/deletesource ID - удалить источник
/enablecategory ID, /disablecategory ID - включить или выключить категорию
/fetch - собрать ленты сейчас`

func ViewCmdStart() botkit.ViewFunc {
	return func(_ context.Context, bot botkit.BotAPI, update tgbotapi.Update) error {
		return botkit.Reply(bot, update, helpText)
	}
}
