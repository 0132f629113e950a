package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/islandrv/helpdesk/backend/internal/app"
	"github.com/islandrv/helpdesk/backend/internal/channel/telegram"
	"github.com/islandrv/helpdesk/backend/internal/config"
	"github.com/islandrv/helpdesk/backend/internal/handler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn("no .env file loaded, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg.Log.Apply()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize help desk")
	}
	defer func() {
		if err := application.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close transcript store")
		}
	}()

	if cfg.Telegram.Enabled() {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken, application.Desk)
		if err != nil {
			logrus.WithError(err).Warn("telegram channel disabled")
		} else {
			go func() {
				if err := bot.Run(ctx); err != nil {
					logrus.WithError(err).Error("telegram bot stopped")
				}
			}()
		}
	}

	router := handler.NewRouter(application.Desk)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logrus.WithField("addr", addr).Info("Island RV help desk listening")
	if err := runServer(ctx, srv); err != nil {
		logrus.WithError(err).Error("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
