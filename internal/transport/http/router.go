package http

import (
	"net/http"
	"time"

	"nearby/internal/observability/middleware"
	"nearby/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	// StaticDir serves the presentation client at / when non-empty.
	StaticDir       string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	RateLimitPerMin int
}

func NewRouter(auth *service.AuthService, presence *service.PresenceService, chat *service.ChatService, ws http.Handler, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.RateLimitPerMin <= 0 {
		opts.RateLimitPerMin = 300
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	h := &Handler{auth: auth, presence: presence, chat: chat}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.WithMetrics)
	r.Use(middleware.WithRequestLog)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// JSON API. The request timeout stays off the websocket route; it
	// would tear down long-lived connections.
	r.Group(func(api chi.Router) {
		api.Use(chimw.Timeout(opts.RequestTimeout))
		api.Use(httprate.LimitByIP(opts.RateLimitPerMin, time.Minute))

		api.Post("/api/register", h.handleRegister)
		api.Post("/api/login", h.handleLogin)
		api.Post("/api/update-location", h.handleUpdateLocation)
		api.Get("/api/users", h.handleListUsers)
		api.Get("/api/messages", h.handleMessageHistory)
	})

	r.Get("/ws", ws.ServeHTTP)

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return r
}
