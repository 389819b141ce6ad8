package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"nearby/internal/dto"
	"nearby/internal/observability/metrics"
	"nearby/internal/service"
	"nearby/internal/session"

	"github.com/gorilla/websocket"
)

type Handler struct {
	registry *session.Registry
	chat     *service.ChatService
	upgrader websocket.Upgrader
	buffer   int
}

func NewHandler(registry *session.Registry, chat *service.ChatService, sendBuffer int) *Handler {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Handler{
		registry: registry,
		chat:     chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		buffer: sendBuffer,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	s := newSession(conn, h.buffer)
	h.registry.Register(s)
	metrics.LiveConnections.WithLabelValues().Inc()
	slog.Info("ws connected", "session_id", s.id)

	go s.writePump()
	h.readPump(r.Context(), s)
}

func (h *Handler) readPump(ctx context.Context, s *Session) {
	defer func() {
		h.registry.Unregister(s)
		s.close()
		metrics.LiveConnections.WithLabelValues().Dec()
		slog.Info("ws disconnected", "session_id", s.id)
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				slog.Warn("ws read", "session_id", s.id, "error", err)
			}
			return
		}
		h.dispatch(ctx, s, data)
	}
}

// dispatch handles one inbound frame. Malformed frames are dropped
// without killing the connection.
func (h *Handler) dispatch(ctx context.Context, s *Session, data []byte) {
	var ev dto.InboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Debug("ws bad frame", "session_id", s.id, "error", err)
		return
	}
	switch ev.Type {
	case dto.EventJoin:
		var p dto.JoinPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil || p.UserID <= 0 {
			slog.Debug("ws bad join payload", "session_id", s.id)
			return
		}
		h.registry.Join(s, p.UserID)
		slog.Info("ws joined", "session_id", s.id, "user_id", p.UserID)
	case dto.EventSendMessage:
		var p dto.SendMessagePayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			slog.Debug("ws bad send_message payload", "session_id", s.id)
			return
		}
		// A failed persist drops delivery for both parties; no error
		// event goes back to the client.
		if _, err := h.chat.Send(ctx, p.SenderID, p.ReceiverID, p.Content); err != nil {
			metrics.MessagesRoutedTotal.WithLabelValues("error").Inc()
			slog.Error("send_message failed", "session_id", s.id, "error", err)
			return
		}
		metrics.MessagesRoutedTotal.WithLabelValues("ok").Inc()
	default:
		slog.Debug("ws unknown event", "session_id", s.id, "type", ev.Type)
	}
}
