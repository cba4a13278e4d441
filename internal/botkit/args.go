package botkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Аргументы команды в виде json: /addsource {"name": "...", "url": "..."}
func ParseJSON[T any](src string) (T, error) {
	var args T

	if err := json.Unmarshal([]byte(src), &args); err != nil {
		return args, fmt.Errorf("parse command arguments: %w", err)
	}

	return args, nil
}

// Единственный числовой аргумент команды: /deletesource 42
func ParseID(src string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(src), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("expected positive numeric id, got %q", src)
	}

	return id, nil
}

// Ответ в тот же чат с markdown разметкой. Текст должен быть уже заэкранирован
func ReplyMarkdown(bot BotAPI, update tgbotapi.Update, text string) error {
	reply := tgbotapi.NewMessage(update.Message.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdownV2
	reply.DisableWebPagePreview = true

	if _, err := bot.Send(reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}

// Ответ простым текстом
func Reply(bot BotAPI, update tgbotapi.Update, text string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, text)); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}
