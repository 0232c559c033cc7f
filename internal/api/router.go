package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Index.
	r.Get("/entries", h.ListEntries)
	r.Get("/search", h.Search)
	r.Post("/reindex", h.Reindex)

	// Notes.
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Post("/meta", h.EditMeta)
	r.Post("/append", h.AppendNote)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
