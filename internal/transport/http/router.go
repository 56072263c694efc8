package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bloodlagbe_backend/internal/handler"
	authmw "bloodlagbe_backend/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	ProfileHandler *handler.ProfileHandler
	PostHandler    *handler.PostHandler
	WebhookHandler *handler.WebhookHandler
	ClerkJWTKey    string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	// Liveness endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello World!"))
	})

	// Public routes - no authentication required
	r.Get("/blood-groups", cfg.ProfileHandler.ListBloodGroups)
	r.Get("/profile/{userId}", cfg.ProfileHandler.GetPublicProfile)
	r.Get("/posts", cfg.PostHandler.ListRecent)

	// Identity provider webhook - verified by signature, not session
	r.Post("/webhooks/clerk", cfg.WebhookHandler.HandleClerk)

	// Protected routes - require a valid session
	r.Group(func(r chi.Router) {
		r.Use(authmw.SessionAuth(cfg.ClerkJWTKey))

		r.Get("/me", cfg.ProfileHandler.Me)
		r.Patch("/me", cfg.ProfileHandler.UpdateMe)
		r.Get("/me/posts", cfg.PostHandler.MyPosts)
		r.Post("/posts", cfg.PostHandler.Create)
	})

	return r
}
