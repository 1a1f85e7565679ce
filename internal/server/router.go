// Package server собирает HTTP-поверхность сервиса синхронизации.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvailur/syncmarks/internal/server/handlers"
	"github.com/mvailur/syncmarks/internal/server/middleware"
)

// RouterConfig — зависимости HTTP-роутера.
type RouterConfig struct {
	Logger  *slog.Logger
	Engine  handlers.SyncEngine
	JWT     handlers.JWTConfig
	Limiter *middleware.RateLimiter
	Version string
}

// NewRouter собирает chi-роутер: health без аутентификации, эндпоинты
// синхронизации за JWT и rate limit-ом.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger, "/api/v1/health"))

	healthHandler := handlers.NewHealthHandler(cfg.Logger, cfg.Version)
	r.Get("/api/v1/health", healthHandler.Health)

	syncHandler := handlers.NewSyncHandler(cfg.Logger, cfg.Engine)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Logger, cfg.JWT))
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}

		r.Post("/api/v1/sync/push", syncHandler.HandlePush)
		r.Get("/api/v1/sync/pull", syncHandler.HandlePull)
		r.Get("/api/v1/sync/check", syncHandler.HandleCheck)
	})

	return r
}
