package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avercier/parley/internal/config"
	"github.com/avercier/parley/internal/interview"
	"github.com/avercier/parley/internal/session"
)

// Deps carries everything the handlers need.
type Deps struct {
	Service *interview.Service
	Store   *session.Store
	Config  config.Config
	Auth    *AuthStore
	Version string
}

// NewHandler builds the full route tree.
func NewHandler(deps Deps) http.Handler {
	if deps.Auth == nil {
		deps.Auth = NewAuthStore()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", handleHealth(deps))

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authRoutes(deps))
		r.Mount("/interview", interviewRoutes(deps))
		r.Mount("/evaluation", evaluationRoutes(deps))
		r.Mount("/reports", reportRoutes(deps))
		r.Mount("/questions", questionRoutes(deps))
	})

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := deps.Store.Stats()
		respondJSON(w, http.StatusOK, map[string]any{
			"status":          "healthy",
			"service":         "parley",
			"version":         deps.Version,
			"provider":        deps.Config.Gemini.Model,
			"active_sessions": stats.TotalActiveSessions,
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
