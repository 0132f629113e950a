package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/islandrv/helpdesk/backend/internal/model/chat"
	"github.com/islandrv/helpdesk/backend/internal/model/policy"
)

const historyLimit = 10

var ErrEmptyReply = errors.New("completion returned an empty reply")

// Request is one completion turn.
type Request struct {
	SessionID string
	Message   string
	History   []chat.Message
	Guidance  Guidance
}

// Service renders the help desk prompt and sends it to the chat model.
type Service struct {
	chatModel model.ChatModel
	template  prompt.ChatTemplate
	prompts   *PromptBuilder
	log       *logrus.Entry
}

// NewService wires a chat model to the policy prompt.
func NewService(chatModel model.ChatModel, p policy.Policy) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	return &Service{
		chatModel: chatModel,
		template:  template,
		prompts:   NewPromptBuilder(p),
		log:       logrus.WithField("component", "ai"),
	}, nil
}

// BuildMessages renders the ordered message list: system, history, user.
func (s *Service) BuildMessages(ctx context.Context, req Request) ([]*schema.Message, error) {
	messages, err := s.template.Format(ctx, map[string]any{
		"system":  s.prompts.BuildSystemPrompt(req.Guidance),
		"history": buildHistoryMessages(req.History),
		"query":   req.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}
	return messages, nil
}

// Complete performs exactly one completion call. Errors from the model are
// returned wrapped so callers can inspect *UpstreamError.
func (s *Service) Complete(ctx context.Context, req Request) (string, error) {
	messages, err := s.BuildMessages(ctx, req)
	if err != nil {
		return "", err
	}

	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyReply
	}

	s.log.WithFields(logrus.Fields{
		"session": req.SessionID,
		"history": len(req.History),
		"length":  len(response.Content),
	}).Info("generated reply")
	return response.Content, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}
