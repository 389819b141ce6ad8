package ws

import (
	"sync"
	"time"

	"nearby/internal/dto"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Session is one live websocket connection. Outbound events go through a
// buffered channel drained by writePump, so delivery never blocks the
// component fanning out.
type Session struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan dto.Event

	mu     sync.Mutex
	closed bool
}

func newSession(conn *websocket.Conn, buffer int) *Session {
	return &Session{
		id:   uuid.New(),
		conn: conn,
		send: make(chan dto.Event, buffer),
	}
}

// Send enqueues without blocking. A full queue drops the event: a slow
// consumer must not stall the sender.
func (s *Session) Send(ev dto.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- ev:
		return true
	default:
		return false
	}
}

// close is idempotent. Marking closed before closing the channel keeps
// concurrent Send calls from hitting a closed channel.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.send)
	s.mu.Unlock()
	_ = s.conn.Close()
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-s.send:
			if !ok {
				_ = s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
