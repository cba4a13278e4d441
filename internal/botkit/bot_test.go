package botkit

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []string
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig).Text)
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) GetChatAdministrators(tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return nil, nil
}

func message(text string, cmdLen int) tgbotapi.Update {
	msg := &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 7}}
	if cmdLen > 0 {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	}

	return tgbotapi.Update{Message: msg}
}

func TestHandleUpdate(t *testing.T) {
	var got []string

	views := map[string]ViewFunc{
		"ping": func(_ context.Context, _ BotAPI, u tgbotapi.Update) error {
			got = append(got, u.Message.CommandArguments())
			return nil
		},
		"fail": func(context.Context, BotAPI, tgbotapi.Update) error {
			return errors.New("boom")
		},
		"panic": func(context.Context, BotAPI, tgbotapi.Update) error {
			panic("view exploded")
		},
	}

	bot := &fakeBot{}
	ctx := context.Background()

	handleUpdate(ctx, bot, views, message("/ping hello", 5))
	handleUpdate(ctx, bot, views, message("just text", 0))
	handleUpdate(ctx, bot, views, message("/unknown", 8))
	handleUpdate(ctx, bot, views, tgbotapi.Update{})

	assert.Equal(t, []string{"hello"}, got)
	assert.Empty(t, bot.sent)

	handleUpdate(ctx, bot, views, message("/fail", 5))
	assert.Equal(t, []string{"internal error"}, bot.sent)

	assert.NotPanics(t, func() {
		handleUpdate(ctx, bot, views, message("/panic", 6))
	})
}

func TestParseJSON(t *testing.T) {
	type args struct {
		Name string `json:"name"`
	}

	got, err := ParseJSON[args](`{"name": "CISA"}`)
	require.NoError(t, err)
	assert.Equal(t, "CISA", got.Name)

	_, err = ParseJSON[args]("name=CISA")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}
