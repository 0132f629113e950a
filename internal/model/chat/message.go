package chat

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRole = errors.New("role must be user or assistant")
	ErrEmptyText   = errors.New("message text is required")
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two conversation roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single conversation turn.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate enforces the turn invariants.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return ErrInvalidRole
	}
	if strings.TrimSpace(m.Text) == "" {
		return ErrEmptyText
	}
	return nil
}
