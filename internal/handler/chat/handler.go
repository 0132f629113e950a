package chat

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/islandrv/helpdesk/backend/internal/render"
	"github.com/islandrv/helpdesk/backend/internal/service/ai"
	chatService "github.com/islandrv/helpdesk/backend/internal/service/chat"
	"github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
	"github.com/islandrv/helpdesk/backend/pkg/utils"
)

const (
	formatHTML = "html"

	msgMethodNotAllowed = "Method not allowed"
	msgInvalidBody      = "invalid request body"
	msgUpstreamFailed   = "Failed to fetch response from OpenAI"
)

// Handler serves the chat endpoints.
type Handler struct {
	desk     *helpdesk.Service
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// New creates a chat handler on top of the help desk service.
func New(desk *helpdesk.Service) *Handler {
	return &Handler{
		desk: desk,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logrus.WithField("component", "chat-handler"),
	}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	// Registered for every method so non-POST requests get the JSON 405 body.
	r.HandleFunc("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/messages", h.handleTranscript)
	r.Get("/quick-replies", h.handleQuickReplies)
}

type chatRequest struct {
	Message   string `json:"message"`
	UnitType  string `json:"unitType"`
	SessionID string `json:"sessionId"`
	Format    string `json:"format"`
}

type chatResponse struct {
	Reply string        `json:"reply"`
	HTML  template.HTML `json:"html,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		utils.RespondError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := h.desk.Answer(r.Context(), helpdesk.Request{
		Message:   payload.Message,
		UnitType:  payload.UnitType,
		SessionID: payload.SessionID,
	})
	if err != nil {
		status, message := classifyError(err)
		if status >= http.StatusInternalServerError {
			h.log.WithError(err).Error("chat request failed")
		}
		utils.RespondError(w, status, message)
		return
	}

	out := chatResponse{Reply: resp.Reply}
	if strings.EqualFold(payload.Format, formatHTML) {
		out.HTML = render.Markdown(resp.Reply)
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

// classifyError maps a failed turn to a status code and a client-safe message.
func classifyError(err error) (int, string) {
	var upstream *ai.UpstreamError
	switch {
	case errors.Is(err, helpdesk.ErrMessageRequired):
		return http.StatusBadRequest, helpdesk.ErrMessageRequired.Error()
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound, chatService.ErrSessionNotFound.Error()
	case errors.Is(err, helpdesk.ErrAIUnavailable):
		return http.StatusServiceUnavailable, helpdesk.ErrAIUnavailable.Error()
	case errors.As(err, &upstream) && upstream.Message != "":
		return http.StatusInternalServerError, upstream.Message
	default:
		return http.StatusInternalServerError, msgUpstreamFailed
	}
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	chats := h.desk.Chats()
	if chats == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "sessions unavailable")
		return
	}

	var payload struct {
		Channel string `json:"channel"`
	}
	// An empty body is allowed and selects the default channel.
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
	}

	session, err := chats.CreateSession(r.Context(), strings.TrimSpace(payload.Channel))
	if err != nil {
		h.log.WithError(err).Error("create session failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	chats := h.desk.Chats()
	if chats == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "sessions unavailable")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	messages, err := chats.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.WithError(err).WithField("session", sessionID).Error("load transcript failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleQuickReplies(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.desk.Policy().QuickReplies)
}
