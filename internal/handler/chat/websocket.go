package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/islandrv/helpdesk/backend/internal/render"
	"github.com/islandrv/helpdesk/backend/internal/service/helpdesk"
)

const (
	pingInterval = 54 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	maxFrameSize = 16 << 10
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type textPayload struct {
	Text     string `json:"text"`
	UnitType string `json:"unitType"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type replyPayload struct {
	Reply  string `json:"reply"`
	HTML   string `json:"html"`
	Source string `json:"source"`
}

// handleWebSocket keeps one session per connection. Every "text" frame is a
// customer turn; frames are answered in order.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		if chats := h.desk.Chats(); chats != nil {
			session, err := chats.CreateSession(ctx, "websocket")
			if err != nil {
				h.log.WithError(err).Error("create websocket session failed")
				h.sendError(conn, "failed to create session")
				return
			}
			sessionID = session.ID
		}
	}

	entry := h.log.WithField("session", sessionID)
	entry.Info("websocket connected")
	defer entry.Info("websocket closed")

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.send(conn, outgoingMessage{
		Type:      "connected",
		SessionID: sessionID,
		Data:      map[string]any{"quickReplies": h.desk.Policy().QuickReplies},
	})

	go h.pingLoop(ctx, conn)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				entry.WithError(err).Warn("websocket read failed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			h.sendError(conn, "unsupported frame type")
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn, msgInvalidBody)
			continue
		}

		switch msg.Type {
		case "text":
			h.handleText(ctx, conn, sessionID, msg.Data, entry)
		case "ping":
			h.send(conn, outgoingMessage{Type: "pong", SessionID: sessionID})
		default:
			h.sendError(conn, "unknown message type")
		}
	}
}

func (h *Handler) handleText(ctx context.Context, conn *websocket.Conn, sessionID string, raw json.RawMessage, entry *logrus.Entry) {
	var payload textPayload
	if len(raw) == 0 || json.Unmarshal(raw, &payload) != nil {
		h.sendError(conn, msgInvalidBody)
		return
	}

	resp, err := h.desk.Answer(ctx, helpdesk.Request{
		Message:   payload.Text,
		UnitType:  payload.UnitType,
		SessionID: sessionID,
	})
	if err != nil {
		status, message := classifyError(err)
		if status >= http.StatusInternalServerError {
			entry.WithError(err).Error("websocket turn failed")
		}
		h.sendError(conn, message)
		return
	}

	h.send(conn, outgoingMessage{
		Type:      "reply",
		SessionID: sessionID,
		Data: replyPayload{
			Reply:  resp.Reply,
			HTML:   string(render.Markdown(resp.Reply)),
			Source: string(resp.Source),
		},
	})
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().Unix()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.log.WithError(err).Warn("websocket write failed")
	}
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, outgoingMessage{
		Type: "error",
		Data: map[string]string{"message": message},
	})
}

// pingLoop keeps idle connections alive until ctx ends.
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
