package session

import (
	"sync"

	"nearby/internal/dto"
)

// Sender is the outbound side of one live connection. Send must not
// block; it reports false when the event was dropped or the connection
// is already closed.
type Sender interface {
	Send(ev dto.Event) bool
}

// Registry tracks every live connection and which user id, if any, each
// one is joined to. The per-user rooms replace the transport-level
// grouping the service would otherwise need.
//
// Connection lifecycle: Register on connect, at most one Join binding
// (a re-join moves the connection: last join wins), Unregister on
// disconnect. There is no way back to unjoined short of disconnecting.
type Registry struct {
	mu    sync.RWMutex
	conns map[Sender]int64 // 0 = registered but not joined
	rooms map[int64]map[Sender]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[Sender]int64),
		rooms: make(map[int64]map[Sender]struct{}),
	}
}

// Register adds a connection to the global set so it receives system-wide
// broadcasts even before joining.
func (r *Registry) Register(c Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c]; !ok {
		r.conns[c] = 0
	}
}

// Join binds a connection to a user id. A connection bound to another
// user id is moved. Joining an unregistered connection registers it.
func (r *Registry) Join(c Sender, userID int64) {
	if userID <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[c]
	if prev == userID {
		return
	}
	if prev != 0 {
		r.detach(c, prev)
	}
	room, ok := r.rooms[userID]
	if !ok {
		room = make(map[Sender]struct{})
		r.rooms[userID] = room
	}
	room[c] = struct{}{}
	r.conns[c] = userID
}

// Unregister removes the connection from the global set and from any
// room it joined. Idempotent; safe for a connection that never joined
// or never registered.
func (r *Registry) Unregister(c Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if userID, ok := r.conns[c]; ok && userID != 0 {
		r.detach(c, userID)
	}
	delete(r.conns, c)
}

func (r *Registry) detach(c Sender, userID int64) {
	room, ok := r.rooms[userID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(r.rooms, userID)
	}
}

// SessionsFor returns a snapshot of the connections joined to userID;
// empty when the user is offline.
func (r *Registry) SessionsFor(userID int64) []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[userID]
	out := make([]Sender, 0, len(room))
	for c := range room {
		out = append(out, c)
	}
	return out
}

// All returns a snapshot of every live connection, joined or not.
func (r *Registry) All() []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Sender, 0, len(r.conns))
	for c := range r.conns {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
