package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/islandrv/helpdesk/backend/internal/model/policy"
	"github.com/islandrv/helpdesk/backend/internal/service/ai"
	"github.com/islandrv/helpdesk/backend/internal/service/ai/aitest"
	catalogService "github.com/islandrv/helpdesk/backend/internal/service/catalog"
	chatService "github.com/islandrv/helpdesk/backend/internal/service/chat"
	"github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	updates chan tgbotapi.Update
	stopped bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

func newBot(t *testing.T, fake *aitest.FakeChatModel) (*Bot, *fakeAPI, *chatService.Service) {
	t.Helper()
	aiSvc, err := ai.NewService(fake, policy.Default())
	require.NoError(t, err)

	chats := chatService.NewService(nil)
	desk := helpdesk.NewService(policy.Default(), aiSvc, catalogService.NewAnswerer(nil), chats)
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	return New(api, desk), api, chats
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func TestHandleMessageAnswers(t *testing.T) {
	bot, api, _ := newBot(t, &aitest.FakeChatModel{Reply: "Please contact support."})

	bot.HandleMessage(context.Background(), textMessage(42, "my stove won't light"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(42), msgs[0].ChatID)
	assert.Equal(t, 7, msgs[0].ReplyToMessageID)
	assert.Equal(t, "Please contact support.\n\nContact Support: https://islandrv.ca/contact/", msgs[0].Text)
}

func TestChatKeepsSession(t *testing.T) {
	bot, _, chats := newBot(t, &aitest.FakeChatModel{Reply: "ok"})
	ctx := context.Background()

	bot.HandleMessage(ctx, textMessage(1, "hello"))
	bot.HandleMessage(ctx, textMessage(1, "again"))

	sessionID := bot.sessions[1]
	require.NotEmpty(t, sessionID)
	transcript, err := chats.LoadTranscript(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, transcript, 4)

	bot.HandleMessage(ctx, textMessage(1, "/new"))
	_, ok := bot.sessions[1]
	assert.False(t, ok)
}

func TestStartSendsQuickReplyKeyboard(t *testing.T) {
	bot, api, _ := newBot(t, &aitest.FakeChatModel{Reply: "unused"})

	bot.HandleMessage(context.Background(), textMessage(5, "/start"))

	msgs := api.messages()
	require.Len(t, msgs, 1)
	keyboard, ok := msgs[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, keyboard.Keyboard, len(policy.Default().QuickReplies))
	assert.Equal(t, "Book an RV", keyboard.Keyboard[0][0].Text)
}

func TestQuickReplyLabelIsExpanded(t *testing.T) {
	p := policy.Default()
	p.QuickReplies = []policy.QuickReply{{Label: "Fridge", Message: "My fridge is not cooling"}}

	fake := &aitest.FakeChatModel{Reply: "ok"}
	aiSvc, err := ai.NewService(fake, p)
	require.NoError(t, err)
	bot := New(&fakeAPI{}, helpdesk.NewService(p, aiSvc, catalogService.NewAnswerer(nil), nil))

	bot.HandleMessage(context.Background(), textMessage(9, "fridge"))

	calls := fake.Calls()
	require.Len(t, calls, 1)
	last := calls[0][len(calls[0])-1]
	assert.Equal(t, "My fridge is not cooling", last.Content)
}

func TestRunStopsOnCancel(t *testing.T) {
	bot, api, _ := newBot(t, &aitest.FakeChatModel{Reply: "ok"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t,
		"Book here: Book Now: https://islandrv.ca/booknow/ and read Step one",
		PlainText("Book here: [Book Now](https://islandrv.ca/booknow/) and read **Step one**"))
}
