// Package helpdesk runs one customer turn end to end.
package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/islandrv/helpdesk/backend/internal/analysis/intent"
	"github.com/islandrv/helpdesk/backend/internal/model/chat"
	"github.com/islandrv/helpdesk/backend/internal/model/policy"
	"github.com/islandrv/helpdesk/backend/internal/service/ai"
	catalogservice "github.com/islandrv/helpdesk/backend/internal/service/catalog"
	chatservice "github.com/islandrv/helpdesk/backend/internal/service/chat"
	"github.com/islandrv/helpdesk/backend/internal/service/reply"
)

var (
	ErrMessageRequired = errors.New("message is required")
	ErrAIUnavailable   = errors.New("completion service unavailable")
)

// Source tells where a reply came from.
type Source string

const (
	SourceModel   Source = "model"
	SourceCatalog Source = "catalog"
)

// Request is one inbound customer turn.
type Request struct {
	Message   string
	UnitType  string
	SessionID string
}

// Response is the processed reply.
type Response struct {
	Reply  string
	Source Source
}

// Completer is the slice of the AI service the help desk needs.
type Completer interface {
	Complete(ctx context.Context, req ai.Request) (string, error)
}

// Service answers customer messages.
type Service struct {
	policy   policy.Policy
	pipeline *reply.Pipeline
	ai       Completer
	catalog  *catalogservice.Answerer
	chats    *chatservice.Service
	log      *logrus.Entry
}

// NewService wires the help desk. completer and chats may be nil: without a
// completer only catalog questions are answered, without chats session ids
// are ignored.
func NewService(p policy.Policy, completer Completer, answerer *catalogservice.Answerer, chats *chatservice.Service) *Service {
	return &Service{
		policy:   p,
		pipeline: reply.New(p),
		ai:       completer,
		catalog:  answerer,
		chats:    chats,
		log:      logrus.WithField("component", "helpdesk"),
	}
}

// Policy returns the policy the service enforces.
func (s *Service) Policy() policy.Policy {
	return s.policy
}

// Catalog returns the catalog answerer.
func (s *Service) Catalog() *catalogservice.Answerer {
	return s.catalog
}

// AIAvailable reports whether a completion backend is configured.
func (s *Service) AIAvailable() bool {
	return s.ai != nil
}

// Chats returns the transcript service, or nil.
func (s *Service) Chats() *chatservice.Service {
	return s.chats
}

// Answer runs one turn: catalog shortcut (never for hazards) or one
// completion call, then the reply pipeline. A failed completion is terminal for the turn.
func (s *Service) Answer(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, ErrMessageRequired
	}
	unitType := strings.TrimSpace(req.UnitType)

	var history []chat.Message
	if req.SessionID != "" && s.chats != nil {
		transcript, err := s.chats.LoadTranscript(ctx, req.SessionID)
		if err != nil {
			return Response{}, fmt.Errorf("load transcript: %w", err)
		}
		history = transcript
	}

	decision := intent.Analyze(message)
	entry := s.log.WithFields(logrus.Fields{
		"session":   req.SessionID,
		"topic":     decision.Topic,
		"appliance": decision.Appliance,
		"hazard":    decision.Hazard,
	})

	raw, source, err := s.draft(ctx, req.SessionID, message, unitType, decision, history)
	if err != nil {
		entry.WithError(err).Warn("reply failed")
		return Response{}, err
	}

	processed := s.pipeline.Process(raw, message)
	s.record(ctx, req.SessionID, message, processed)

	entry.WithField("source", source).Info("answered")
	return Response{Reply: processed, Source: source}, nil
}

func (s *Service) draft(ctx context.Context, sessionID, message, unitType string, decision intent.Decision, history []chat.Message) (string, Source, error) {
	// Hazards always go to the model so the safety guidance is applied.
	if !decision.Hazard {
		if answer, ok := s.catalog.Answer(decision.Topic, unitType); ok {
			return answer, SourceCatalog, nil
		}
	}

	if s.ai == nil {
		return "", "", ErrAIUnavailable
	}

	guidance := ai.Guidance{
		Decision:      decision,
		BookingIntent: reply.HasBookingIntent(message),
		UnitType:      unitType,
	}
	if unit, ok := s.catalog.Find(unitType); ok {
		guidance.Unit = &unit
	}

	text, err := s.ai.Complete(ctx, ai.Request{
		SessionID: sessionID,
		Message:   message,
		History:   history,
		Guidance:  guidance,
	})
	if err != nil {
		return "", "", err
	}
	return text, SourceModel, nil
}

// record appends both turns to the transcript. Failures are logged only; the
// customer already has a reply.
func (s *Service) record(ctx context.Context, sessionID, message, answer string) {
	if sessionID == "" || s.chats == nil {
		return
	}
	turns := []chat.Message{
		{SessionID: sessionID, Role: chat.RoleUser, Text: message},
		{SessionID: sessionID, Role: chat.RoleAssistant, Text: answer},
	}
	for _, turn := range turns {
		if _, err := s.chats.SaveMessage(ctx, turn); err != nil {
			s.log.WithError(err).WithField("session", sessionID).Warn("failed to save turn")
		}
	}
}
