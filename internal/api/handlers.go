// Package api implements the Ansuz REST API using chi.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/ideaservice"
	"github.com/starford/ansuz/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	svc *ideaservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *ideaservice.Service) *Handler {
	return &Handler{svc: svc}
}

func ideaID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ListIdeas handles GET /api/ideas with optional keyword/category/tag
// filters and offset pagination.
func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	ideas, err := h.svc.Search(r.Context(), store.SearchFilter{
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		slog.Error("list ideas failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, map[string]any{"data": ideas})
}

// CreateIdea handles POST /api/ideas.
func (h *Handler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	if req.Source == "" {
		req.Source = "web"
	}

	res, err := h.svc.Create(r.Context(), store.CreateIdea{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Summary:  req.Summary,
		Source:   req.Source,
		Slug:     req.Slug,
		Tags:     tagsOrKeywords(req.Tags, req.Keywords),
	})
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("create idea failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, map[string]any{"id": res.ID, "slug": res.Slug, "title": res.Title})
}

// GetIdea handles GET /api/ideas/{id}.
func (h *Handler) GetIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := ideaID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	idea, relations, err := h.svc.Get(r.Context(), id)
	if err != nil {
		slog.Error("get idea failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if idea == nil {
		writeError(w, http.StatusNotFound, "idea not found")
		return
	}
	writeOK(w, map[string]any{"data": idea, "relations": relations})
}

// UpdateIdea handles PUT /api/ideas/{id}.
func (h *Handler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id, ok := ideaID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req UpdateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.svc.Update(r.Context(), id, store.UpdateIdea{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Summary:  req.Summary,
		Source:   req.Source,
		Tags:     tagsOrKeywords(req.Tags, req.Keywords),
	})
	if err != nil {
		slog.Error("update idea failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "idea not found or no changes")
		return
	}
	writeOK(w, map[string]any{"message": "idea updated"})
}

// DeleteIdea handles DELETE /api/ideas/{id}.
func (h *Handler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := ideaID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete idea failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "idea not found")
		return
	}
	writeOK(w, map[string]any{"message": "idea deleted", "deleted": deleted})
}

// GetRelations handles GET /api/ideas/{id}/relations.
func (h *Handler) GetRelations(w http.ResponseWriter, r *http.Request) {
	id, ok := ideaID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	relations, err := h.svc.Relations(r.Context(), id)
	if err != nil {
		slog.Error("get relations failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, map[string]any{"data": relations})
}

// AddRelation handles POST /api/relations.
func (h *Handler) AddRelation(w http.ResponseWriter, r *http.Request) {
	var req AddRelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IdeaID1 == 0 || req.IdeaID2 == 0 {
		writeError(w, http.StatusBadRequest, "idea_id_1 and idea_id_2 are required")
		return
	}
	relID, _, _, err := h.svc.Relate(r.Context(), req.IdeaID1, req.IdeaID2, req.Type, req.Note)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("add relation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, map[string]any{"id": relID})
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		slog.Error("list categories failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, map[string]any{"data": cats})
}

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context())
	if err != nil {
		slog.Error("list tags failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, map[string]any{"data": tags})
}

// Recent handles GET /api/recent.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	ideas, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("recent failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeOK(w, map[string]any{"data": ideas})
}
