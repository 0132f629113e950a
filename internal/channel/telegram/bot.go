// Package telegram exposes the help desk as a Telegram bot. Each Telegram
// chat is mapped to one help desk session.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	chatService "github.com/islandrv/helpdesk/backend/internal/service/chat"
	"github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
)

const channelName = "telegram"

var (
	linkPattern = regexp.MustCompile(`\[([^\]\n]+)\]\((https?://[^)\s]+)\)`)
	boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// API is the part of the Bot API the bot uses. *tgbotapi.BotAPI satisfies it.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot relays Telegram messages to the help desk.
type Bot struct {
	api  API
	desk *helpdesk.Service
	log  *logrus.Entry

	mu       sync.Mutex
	sessions map[int64]string
}

// NewBot authorizes token against the Bot API.
func NewBot(token string, desk *helpdesk.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating Telegram bot: %w", err)
	}
	bot := New(api, desk)
	bot.log.WithField("username", api.Self.UserName).Info("telegram bot authorized")
	return bot, nil
}

// New builds a bot on an existing API client.
func New(api API, desk *helpdesk.Service) *Bot {
	return &Bot{
		api:      api,
		desk:     desk,
		log:      logrus.WithField("component", "telegram"),
		sessions: make(map[int64]string),
	}
}

// Run long-polls for updates until ctx is canceled or the channel closes.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info("telegram bot listening for messages")
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				go b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage answers a single inbound message.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if strings.HasPrefix(text, "/") {
		b.handleCommand(chatID, msg.MessageID, text)
		return
	}

	sessionID, err := b.session(ctx, chatID)
	if err != nil {
		b.log.WithError(err).WithField("chat", chatID).Error("create session failed")
		b.sendReply(chatID, msg.MessageID, "Sorry, something went wrong. Please try again.")
		return
	}

	b.sendTyping(chatID)

	resp, err := b.desk.Answer(ctx, helpdesk.Request{
		Message:   b.expandQuickReply(text),
		SessionID: sessionID,
	})
	if err != nil {
		b.log.WithError(err).WithField("chat", chatID).Warn("answer failed")
		if errors.Is(err, chatService.ErrSessionNotFound) {
			b.forget(chatID)
		}
		b.sendReply(chatID, msg.MessageID, "Sorry, I couldn't get an answer right now. Please try again shortly.")
		return
	}

	b.sendReply(chatID, msg.MessageID, PlainText(resp.Reply))
}

func (b *Bot) handleCommand(chatID int64, replyTo int, text string) {
	cmd := strings.ToLower(strings.Fields(text)[0])
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}

	switch cmd {
	case "/start", "/help":
		b.sendWelcome(chatID)
	case "/new":
		b.forget(chatID)
		b.sendReply(chatID, replyTo, "Started a new conversation. How can we help?")
	default:
		b.sendReply(chatID, replyTo, fmt.Sprintf("Unknown command %s. Try /help", cmd))
	}
}

// expandQuickReply turns a tapped keyboard label into its canned message.
func (b *Bot) expandQuickReply(text string) string {
	for _, q := range b.desk.Policy().QuickReplies {
		if strings.EqualFold(q.Label, text) {
			return q.Message
		}
	}
	return text
}

// session returns the chat's session, creating one on first contact. Without
// a transcript service every message is answered statelessly.
func (b *Bot) session(ctx context.Context, chatID int64) (string, error) {
	chats := b.desk.Chats()
	if chats == nil {
		return "", nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if id, ok := b.sessions[chatID]; ok {
		return id, nil
	}
	session, err := chats.CreateSession(ctx, channelName)
	if err != nil {
		return "", err
	}
	b.sessions[chatID] = session.ID
	return session.ID, nil
}

func (b *Bot) forget(chatID int64) {
	b.mu.Lock()
	delete(b.sessions, chatID)
	b.mu.Unlock()
}

func (b *Bot) sendWelcome(chatID int64) {
	p := b.desk.Policy()
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Welcome to the %s help desk! Ask about your rental, or pick a topic below.", p.Brand))

	var rows [][]tgbotapi.KeyboardButton
	for _, q := range p.QuickReplies {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(q.Label)))
	}
	if len(rows) > 0 {
		keyboard := tgbotapi.NewReplyKeyboard(rows...)
		keyboard.ResizeKeyboard = true
		msg.ReplyMarkup = keyboard
	}

	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Warn("failed to send welcome")
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.api.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.WithError(err).Debug("failed to send typing action")
	}
}

func (b *Bot) sendReply(chatID int64, replyTo int, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat", chatID).Warn("failed to send message")
	}
}

// PlainText flattens reply Markdown for Telegram, which is sent without a
// parse mode: links become "label: url" and bold markers are dropped.
func PlainText(reply string) string {
	out := linkPattern.ReplaceAllString(reply, "$1: $2")
	return boldPattern.ReplaceAllString(out, "$1")
}
