package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/islandrv/helpdesk/backend/internal/model/catalog"
	catalogService "github.com/islandrv/helpdesk/backend/internal/service/catalog"
	"github.com/islandrv/helpdesk/backend/pkg/utils"
)

// Handler serves the RV catalog.
type Handler struct {
	catalog *catalogService.Answerer
}

// New creates a catalog handler.
func New(answerer *catalogService.Answerer) *Handler {
	return &Handler{catalog: answerer}
}

// RegisterRoutes mounts the catalog routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.handleList)
	r.Get("/catalog/{category}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	if categories == nil {
		categories = []catalog.Category{}
	}
	utils.RespondJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	category, ok := h.catalog.Find(chi.URLParam(r, "category"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "category not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, category)
}
