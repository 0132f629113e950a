// Package app assembles the help desk from configuration. It is shared by
// the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/islandrv/helpdesk/backend/internal/config"
	"github.com/islandrv/helpdesk/backend/internal/model/catalog"
	"github.com/islandrv/helpdesk/backend/internal/model/policy"
	"github.com/islandrv/helpdesk/backend/internal/service/ai"
	catalogService "github.com/islandrv/helpdesk/backend/internal/service/catalog"
	chatService "github.com/islandrv/helpdesk/backend/internal/service/chat"
	"github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
)

// App holds the assembled services.
type App struct {
	Desk  *helpdesk.Service
	Chats *chatService.Service
}

// New loads the policy, catalog and transcript store and connects the
// completion backend when credentials are configured. A missing or broken AI
// configuration is logged and the desk runs catalog-only.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logrus.WithField("component", "app")

	p, err := policy.Load(cfg.Policy.File)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	var store catalog.Store
	if cfg.Catalog.File != "" {
		loaded, err := catalog.Load(cfg.Catalog.File)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		store = loaded
		log.WithField("categories", len(loaded.List())).Info("catalog loaded")
	}

	var transcripts chatService.Store
	if cfg.Transcript.DBPath != "" {
		sqlite, err := chatService.NewSQLiteStore(cfg.Transcript.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open transcript store: %w", err)
		}
		transcripts = sqlite
		log.WithField("path", cfg.Transcript.DBPath).Info("transcripts stored in sqlite")
	}
	chats := chatService.NewService(transcripts)

	var completer helpdesk.Completer
	if cfg.AI.Enabled() {
		aiSvc, err := newAIService(ctx, cfg.AI, p)
		if err != nil {
			log.WithError(err).Warn("AI service unavailable, continuing catalog-only")
		} else {
			completer = aiSvc
			log.WithFields(logrus.Fields{
				"provider": cfg.AI.Provider,
				"model":    cfg.AI.Model,
			}).Info("AI service initialized")
		}
	} else {
		log.WithField("provider", cfg.AI.Provider).Warn("AI credentials not configured, skipping model setup")
	}

	return &App{
		Desk:  helpdesk.NewService(p, completer, catalogService.NewAnswerer(store), chats),
		Chats: chats,
	}, nil
}

func newAIService(ctx context.Context, cfg config.AIConfig, p policy.Policy) (*ai.Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, err
	}
	return ai.NewService(chatModel, p)
}

// Close releases the transcript store.
func (a *App) Close() error {
	return a.Chats.Close()
}
