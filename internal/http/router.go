package http

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
)

// NewRouter wires application routes and middleware using chi. The auth
// middleware runs on every request, so login, callback and logout paths are
// answered before chi's own routing sees them.
func NewRouter(cfg config.Config, engine *auth.Engine, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSlogMiddleware(logger))
	r.Use(newHTTPMetrics(nil).middleware())
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newAuthMiddleware(engine, logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", handleIndex)
	r.Get("/api/me", handleMe)

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
