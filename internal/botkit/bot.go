package botkit

import (
	"context"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Время на обработку одной команды
const updateTimeout = 5 * time.Second

// То, чем view пользуются от клиента телеграма. *tgbotapi.BotAPI подходит
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
}

// Update здесь это любой эвент, который приходит от телеграма при взаимодействии пользователя с ботом.
// Функция реагирует на определенную команду
type ViewFunc func(ctx context.Context, bot BotAPI, update tgbotapi.Update) error

type Bot struct {
	// Инстанс апи телеграма
	api *tgbotapi.BotAPI
	// Мапа в которой храним view по имени команды
	cmdViews map[string]ViewFunc
}

func New(api *tgbotapi.BotAPI) *Bot {
	return &Bot{
		api:      api,
		cmdViews: make(map[string]ViewFunc),
	}
}

// Регистрация view для команды
func (b *Bot) RegisterCmdView(cmd string, view ViewFunc) {
	b.cmdViews[cmd] = view
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			updateCtx, updateCancel := context.WithTimeout(ctx, updateTimeout)
			handleUpdate(updateCtx, b.api, b.cmdViews, update)
			updateCancel()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Роутим команду на соответствующую view
func handleUpdate(ctx context.Context, api BotAPI, views map[string]ViewFunc, update tgbotapi.Update) {
	// Паника во view не должна ронять бота
	defer func() {
		if p := recover(); p != nil {
			log.WithField("stack", string(debug.Stack())).Errorf("panic recovered: %v", p)
		}
	}()

	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	cmd := update.Message.Command()

	view, ok := views[cmd]
	if !ok {
		return
	}

	if err := view(ctx, api, update); err != nil {
		log.WithFields(log.Fields{
			"cmd":     cmd,
			"chat_id": update.Message.Chat.ID,
		}).WithError(err).Error("failed to handle update")

		if _, err := api.Send(
			tgbotapi.NewMessage(update.Message.Chat.ID, "internal error"),
		); err != nil {
			log.WithError(err).Error("failed to send message")
		}
	}
}
