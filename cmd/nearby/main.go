package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"nearby/internal/config"
	"nearby/internal/observability/logging"
	"nearby/internal/observability/metrics"
	"nearby/internal/service"
	"nearby/internal/session"
	"nearby/internal/store"
	httpx "nearby/internal/transport/http"
	"nearby/internal/transport/ws"
	"nearby/pkg/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "nearby",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	cfg := config.Load()

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		logger.Error("automigrate", "error", err)
		os.Exit(1)
	}

	metrics.MustRegister("nearby")

	registry := session.NewRegistry()
	passwords := service.NewArgon2idPasswordService()
	auth := service.NewAuthService(st, passwords)
	presence := service.NewPresenceService(st, registry, cfg.ActiveWindow)
	chat := service.NewChatService(st, registry)

	wsHandler := ws.NewHandler(registry, chat, cfg.WSSendBuffer)

	handler := httpx.NewRouter(auth, presence, chat, wsHandler, httpx.Options{
		StaticDir:       cfg.StaticDir,
		AllowedOrigins:  cfg.CORSOrigins,
		RequestTimeout:  cfg.RequestTimeout,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("nearby service listening", "addr", srv.Addr, "active_window", cfg.ActiveWindow.String())
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
