package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sevigo/code-review-api/internal/auth"
	"github.com/sevigo/code-review-api/internal/config"
	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/github"
	"github.com/sevigo/code-review-api/internal/server/handler"
	"github.com/sevigo/code-review-api/internal/storage"
)

const banner = "AI Code Review with Ollama/CodeLlama is running"

// corsMethods is every method net/http defines.
var corsMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(
	cfg *config.Config,
	authService *auth.Service,
	reviewer core.PullRequestReviewer,
	store storage.Store,
	clients github.ClientFactory,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Configure middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.AllowedOrigin},
		AllowedMethods:   corsMethods,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	maxBytes := cfg.Server.MaxRequestBytes
	authHandler := handler.NewAuthHandler(authService, maxBytes, logger)
	reviewHandler := handler.NewReviewHandler(reviewer, store, maxBytes, logger)
	reposHandler := handler.NewReposHandler(clients, logger)
	requireUser := handler.RequireUser(authService, logger)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"` + banner + `"}`))
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/auth", func(r chi.Router) {
		if cfg.Server.AuthRouteTimeout > 0 {
			r.Use(middleware.Timeout(cfg.Server.AuthRouteTimeout))
		}
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// No route timeout; bounded by the server write timeout.
	r.Post("/review-pr", reviewHandler.ReviewPR)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/secure-endpoint", authHandler.Secure)
		r.Get("/my-repos", reposHandler.MyRepos)
		r.Get("/reviews/latest", reviewHandler.Latest)
	})

	return r
}
