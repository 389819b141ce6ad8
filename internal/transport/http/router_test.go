package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"nearby/internal/dto"
	"nearby/internal/observability/metrics"
	"nearby/internal/service"
	"nearby/internal/session"
	"nearby/internal/store"
	"nearby/internal/transport/ws"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("test")
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	registry := session.NewRegistry()
	auth := service.NewAuthService(st, service.NewArgon2idPasswordService())
	presence := service.NewPresenceService(st, registry, time.Hour)
	chat := service.NewChatService(st, registry)
	wsHandler := ws.NewHandler(registry, chat, 8)

	return NewRouter(auth, presence, chat, wsHandler, Options{}), st
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	h, _ := setupRouter(t)

	rec := postJSON(t, h, "/api/register", dto.RegisterRequest{Username: "alice", Password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	res := decodeBody[dto.UserResponse](t, rec)
	if res.ID == 0 || res.Username != "alice" {
		t.Fatalf("unexpected body: %+v", res)
	}

	rec = postJSON(t, h, "/api/register", dto.RegisterRequest{Username: "alice", Password: "other"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", rec.Code)
	}
	errBody := decodeBody[map[string]string](t, rec)
	if errBody["error"] != "Username already exists" {
		t.Fatalf("duplicate: unexpected error message %q", errBody["error"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	h, _ := setupRouter(t)

	postJSON(t, h, "/api/register", dto.RegisterRequest{Username: "bob", Password: "right"})

	rec := postJSON(t, h, "/api/login", dto.LoginRequest{Username: "bob", Password: "right"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, h, "/api/login", dto.LoginRequest{Username: "ghost", Password: "right"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown user: expected 400, got %d", rec.Code)
	}
	if body := decodeBody[map[string]string](t, rec); body["error"] != "User not found" {
		t.Fatalf("unknown user: unexpected message %q", body["error"])
	}

	rec = postJSON(t, h, "/api/login", dto.LoginRequest{Username: "bob", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}
	if body := decodeBody[map[string]string](t, rec); body["error"] != "Invalid password" {
		t.Fatalf("bad password: unexpected message %q", body["error"])
	}
}

func TestUpdateLocationEndpoint(t *testing.T) {
	h, _ := setupRouter(t)

	rec := postJSON(t, h, "/api/register", dto.RegisterRequest{Username: "carol", Password: "pw"})
	created := decodeBody[dto.UserResponse](t, rec)

	rec = postJSON(t, h, "/api/update-location", dto.UpdateLocationRequest{UserID: created.ID, Lat: 48.85, Lng: 2.35})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody[map[string]bool](t, rec); !body["success"] {
		t.Fatalf("expected success:true, got %s", rec.Body.String())
	}

	rec = postJSON(t, h, "/api/update-location", dto.UpdateLocationRequest{UserID: 424242, Lat: 1, Lng: 2})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", rec.Code)
	}
}

func TestListUsersEndpoint(t *testing.T) {
	h, _ := setupRouter(t)

	rec := getJSON(t, h, "/api/users")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if users := decodeBody[[]dto.ActiveUser](t, rec); len(users) != 0 {
		t.Fatalf("expected empty listing, got %+v", users)
	}

	reg := postJSON(t, h, "/api/register", dto.RegisterRequest{Username: "dave", Password: "pw"})
	created := decodeBody[dto.UserResponse](t, reg)

	// Registered but never reported: still invisible.
	if users := decodeBody[[]dto.ActiveUser](t, getJSON(t, h, "/api/users")); len(users) != 0 {
		t.Fatalf("user without report listed: %+v", users)
	}

	postJSON(t, h, "/api/update-location", dto.UpdateLocationRequest{UserID: created.ID, Lat: 10, Lng: 20})

	users := decodeBody[[]dto.ActiveUser](t, getJSON(t, h, "/api/users"))
	if len(users) != 1 || users[0].ID != created.ID || users[0].Username != "dave" {
		t.Fatalf("unexpected listing: %+v", users)
	}
	if users[0].Lat == nil || *users[0].Lat != 10 || users[0].Lng == nil || *users[0].Lng != 20 {
		t.Fatalf("projection missing position: %+v", users[0])
	}
}

func TestMessageHistoryEndpoint(t *testing.T) {
	h, st := setupRouter(t)

	chatSvc := service.NewChatService(st, session.NewRegistry())
	for _, content := range []string{"one", "two"} {
		if _, err := chatSvc.Send(context.Background(), 1, 2, content); err != nil {
			t.Fatalf("seed send: %v", err)
		}
	}

	rec := getJSON(t, h, "/api/messages?userId=2&peerId=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	msgs := decodeBody[[]dto.MessageRecord](t, rec)
	if len(msgs) != 2 || msgs[0].Content != "one" || msgs[1].Content != "two" {
		t.Fatalf("unexpected history: %+v", msgs)
	}

	rec = getJSON(t, h, "/api/messages?userId=abc&peerId=1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad query: expected 400, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h, _ := setupRouter(t)

	rec := getJSON(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
