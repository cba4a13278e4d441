package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/botkit/markup"
	"github.com/kovalyov-valentin/intel-feed/internal/model"
	"github.com/kovalyov-valentin/intel-feed/internal/severity"
)

// То, что нам нужно от клиента botAPI. *tgbotapi.BotAPI подходит
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Отправка уведомлений о важных статьях в телеграм канал
type Notifier struct {
	// Инстанс клиента botAPI
	bot Sender
	// id канала куда мы будем постить уведомления
	channelID int64
}

func New(bot Sender, channelID int64) *Notifier {
	return &Notifier{
		bot:       bot,
		channelID: channelID,
	}
}

// Отправляем уведомление. Отправка best effort, ошибку вызывающий только логирует
func (n *Notifier) Notify(ctx context.Context, alert model.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.channelID, formatAlert(alert))
	// Даем понять телеграм, чтобы это сообщение парсилось как markdown сообщение
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	// Клиент телеграма контекст не принимает, поэтому таймаут держит сам http клиент бота
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send alert to %d: %w", n.channelID, err)
	}

	log.WithFields(log.Fields{
		"title":    alert.Title,
		"severity": alert.Severity,
	}).Debug("alert sent")

	return nil
}

// Шаблон сообщения. Сначала уровень, потом жирным заголовок, потом источник и ссылка
func formatAlert(alert model.Alert) string {
	const msgFormat = "%s *%s* %s\n*%s*\n\n%s\n%s"

	level := severity.Level(alert.Severity)

	// Т.к. используется markdown верстка, все аргументы оборачиваем в escape
	return fmt.Sprintf(
		msgFormat,
		levelIcon(level),
		markup.EscapeForMarkdown(level),
		markup.EscapeForMarkdown(fmt.Sprintf("(%d/10)", alert.Severity)),
		markup.EscapeForMarkdown(alert.Title),
		markup.EscapeForMarkdown(alert.SourceName),
		markup.EscapeForMarkdown(alert.Link),
	)
}

func levelIcon(level string) string {
	switch level {
	case severity.LevelCritical:
		return "🔴"
	case severity.LevelHigh:
		return "🟠"
	case severity.LevelMedium:
		return "🟡"
	case severity.LevelLow:
		return "🔵"
	default:
		return "⚪"
	}
}
