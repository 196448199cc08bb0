package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/laguz/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Post("/notes/{id}/favorite", h.ToggleFavorite)

	// Search and suggestions.
	r.Get("/search", h.Search)
	r.Get("/search/stats", h.SearchStats)
	r.Get("/suggest", h.Suggest)
	r.Post("/search/rebuild", h.Rebuild)

	// Categories.
	r.Get("/categories", h.ListCategories)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
