package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/ideaservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *ideaservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Ideas CRUD.
	r.Get("/ideas", h.ListIdeas)
	r.Post("/ideas", h.CreateIdea)
	r.Get("/ideas/{id}", h.GetIdea)
	r.Put("/ideas/{id}", h.UpdateIdea)
	r.Delete("/ideas/{id}", h.DeleteIdea)

	// Relations.
	r.Get("/ideas/{id}/relations", h.GetRelations)
	r.Post("/relations", h.AddRelation)

	// Taxonomy and listings.
	r.Get("/categories", h.ListCategories)
	r.Get("/tags", h.ListTags)
	r.Get("/recent", h.Recent)

	// Chat commands.
	r.Post("/chat", h.Chat)

	// SSE endpoint.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
