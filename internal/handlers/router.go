package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jeremyjsx/blog/internal/middleware"
)

type RouterDeps struct {
	Posts          *PostsHandler
	Health         http.HandlerFunc
	Static         http.Handler
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter mounts the blog API under /api/blogs, the health check at
// /health and the front end on every other path.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recover(deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	if deps.Health != nil {
		r.Get("/health", deps.Health)
	}

	r.Route("/api", func(r chi.Router) {
		// Set before mounting /blogs so the sub-router inherits them.
		r.NotFound(APINotFound)
		r.MethodNotAllowed(APINotFound)

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", deps.Posts.List())
			r.Post("/", deps.Posts.Create())
			r.Get("/{id}", deps.Posts.Get())
			r.Put("/{id}", deps.Posts.Update())
			r.Delete("/{id}", deps.Posts.Delete())
		})
	})

	if deps.Static != nil {
		r.Handle("/*", deps.Static)
	}
	return r
}
