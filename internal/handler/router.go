package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/islandrv/helpdesk/backend/internal/handler/catalog"
	"github.com/islandrv/helpdesk/backend/internal/handler/chat"
	middlewarePkg "github.com/islandrv/helpdesk/backend/internal/middleware"
	helpdeskService "github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
	"github.com/islandrv/helpdesk/backend/internal/web"
	"github.com/islandrv/helpdesk/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the help desk service.
func NewRouter(desk *helpdeskService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.Logger)
	r.Use(middlewarePkg.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(desk)
	catalogHandler := catalog.New(desk.Catalog())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"aiAvailable": desk.AIAvailable(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		catalogHandler.RegisterRoutes(api)
	})

	r.Handle("/*", web.Handler())

	return r
}
