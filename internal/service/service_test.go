package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"nearby/internal/dto"
	"nearby/internal/session"
	"nearby/internal/store"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	st := store.New(db)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return st
}

// stubSender records every delivered event.
type stubSender struct {
	mu     sync.Mutex
	events []dto.Event
}

func (s *stubSender) Send(ev dto.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return true
}

func (s *stubSender) recorded() []dto.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.Event(nil), s.events...)
}

// stubDirectory is a fixed SessionDirectory.
type stubDirectory struct {
	rooms  map[int64][]session.Sender
	global []session.Sender
}

func (d *stubDirectory) SessionsFor(userID int64) []session.Sender { return d.rooms[userID] }

func (d *stubDirectory) All() []session.Sender { return d.global }
