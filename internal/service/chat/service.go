package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/islandrv/helpdesk/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists sessions and their turns.
type Store interface {
	CreateSession(ctx context.Context, session chat.Session) error
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	AppendMessage(ctx context.Context, message chat.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
	Close() error
}

// Service encapsulates conversation state management.
type Service struct {
	store Store
}

// NewService wraps store. A nil store selects the in-memory implementation.
func NewService(store Store) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{store: store}
}

// CreateSession provisions an anonymous session for the given channel
// ("web", "websocket", "telegram", "cli").
func (s *Service) CreateSession(ctx context.Context, channel string) (chat.Session, error) {
	if channel == "" {
		channel = "web"
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		Channel:   channel,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return chat.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// SaveMessage validates and appends a turn to the session transcript.
func (s *Service) SaveMessage(ctx context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}
	if err := message.Validate(); err != nil {
		return chat.Message{}, err
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if err := s.store.AppendMessage(ctx, message); err != nil {
		return chat.Message{}, err
	}
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// LoadTranscript returns stored messages for the provided session, oldest first.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	return s.store.ListMessages(ctx, sessionID)
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}
