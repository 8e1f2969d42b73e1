// Package ideaservice coordinates store access for the adapter layers
// and performs the existence checks adapters rely on.
package ideaservice

import (
	"context"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// EventFunc is called after a successful mutation.
// kind is one of "created", "updated", "deleted".
type EventFunc func(kind string, id int64)

// Service wraps the idea store with adapter-facing semantics.
type Service struct {
	db     store.IdeaStore
	notify EventFunc
}

// NewService creates a new idea service. notify may be nil.
func NewService(db store.IdeaStore, notify EventFunc) *Service {
	return &Service{db: db, notify: notify}
}

// Create stores a new idea (or updates the row with the same slug) and
// emits a change event.
func (s *Service) Create(_ context.Context, in store.CreateIdea) (store.CreateResult, error) {
	res, err := s.db.Create(in)
	if err != nil {
		return store.CreateResult{}, err
	}
	if s.notify != nil {
		kind := "created"
		if res.Updated {
			kind = "updated"
		}
		s.notify(kind, res.ID)
	}
	return res, nil
}

// Get returns an idea with its relations, or (nil, nil, nil) when absent.
func (s *Service) Get(_ context.Context, id int64) (*models.Idea, []models.Relation, error) {
	idea, err := s.db.Get(id)
	if err != nil || idea == nil {
		return idea, nil, err
	}
	rels, err := s.db.Relations(id)
	if err != nil {
		return nil, nil, err
	}
	return idea, rels, nil
}

// GetBySlug returns an idea by slug, or nil when absent.
func (s *Service) GetBySlug(_ context.Context, slug string) (*models.Idea, error) {
	return s.db.GetBySlug(slug)
}

// Update applies the supplied fields and emits a change event on success.
func (s *Service) Update(_ context.Context, id int64, in store.UpdateIdea) (bool, error) {
	ok, err := s.db.Update(id, in)
	if err == nil && ok && s.notify != nil {
		s.notify("updated", id)
	}
	return ok, err
}

// Delete removes an idea and returns the removed row, or nil when the id
// was absent.
func (s *Service) Delete(_ context.Context, id int64) (*models.Idea, error) {
	idea, err := s.db.Get(id)
	if err != nil || idea == nil {
		return nil, err
	}
	ok, err := s.db.Delete(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if s.notify != nil {
		s.notify("deleted", id)
	}
	return idea, nil
}

// Search delegates to the store.
func (s *Service) Search(_ context.Context, f store.SearchFilter) ([]models.Idea, error) {
	return s.db.Search(f)
}

// Recent lists the newest ideas.
func (s *Service) Recent(_ context.Context, limit int) ([]models.Idea, error) {
	return s.db.Recent(limit)
}

// Categories lists categories with counts.
func (s *Service) Categories(_ context.Context) ([]models.CategoryCount, error) {
	return s.db.Categories()
}

// Tags lists tags with usage counts.
func (s *Service) Tags(_ context.Context) ([]models.TagCount, error) {
	return s.db.Tags()
}

// Count returns the total number of ideas.
func (s *Service) Count(_ context.Context) (int, error) {
	return s.db.Count()
}

// Relate links two ideas after checking both endpoints exist. The store
// itself does not validate endpoints, so every adapter goes through here.
func (s *Service) Relate(_ context.Context, id1, id2 int64, relType, note string) (int64, *models.Idea, *models.Idea, error) {
	a, err := s.db.Get(id1)
	if err != nil {
		return 0, nil, nil, err
	}
	if a == nil {
		return 0, nil, nil, fmt.Errorf("idea %d: %w", id1, apperr.ErrNotFound)
	}
	b, err := s.db.Get(id2)
	if err != nil {
		return 0, nil, nil, err
	}
	if b == nil {
		return 0, nil, nil, fmt.Errorf("idea %d: %w", id2, apperr.ErrNotFound)
	}
	relID, err := s.db.AddRelation(id1, id2, relType, note)
	if err != nil {
		return 0, nil, nil, err
	}
	return relID, a, b, nil
}

// Relations returns the relations of an idea.
func (s *Service) Relations(_ context.Context, id int64) ([]models.Relation, error) {
	return s.db.Relations(id)
}

// Similar merges keyword searches into one deduplicated result list,
// excluding the source idea. When ideaID is non-zero its tags and
// category are folded into the keyword set.
func (s *Service) Similar(_ context.Context, keywords []string, ideaID int64, limit int) ([]models.Idea, []string, error) {
	if limit <= 0 {
		limit = 5
	}

	if ideaID != 0 {
		idea, err := s.db.Get(ideaID)
		if err != nil {
			return nil, nil, err
		}
		if idea == nil {
			return nil, nil, fmt.Errorf("idea %d: %w", ideaID, apperr.ErrNotFound)
		}
		keywords = append(keywords, idea.Tags...)
		if idea.Category != "" {
			keywords = append(keywords, idea.Category)
		}
	}

	keywords = dedupe(keywords)
	if len(keywords) == 0 {
		return nil, nil, fmt.Errorf("no keywords to search with: %w", apperr.ErrValidation)
	}

	seen := map[int64]struct{}{}
	if ideaID != 0 {
		seen[ideaID] = struct{}{}
	}
	var out []models.Idea
	for _, kw := range keywords {
		hits, err := s.db.Search(store.SearchFilter{Keyword: kw, Limit: limit * 2})
		if err != nil {
			return nil, nil, err
		}
		for _, h := range hits {
			if _, dup := seen[h.ID]; dup {
				continue
			}
			seen[h.ID] = struct{}{}
			out = append(out, h)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, keywords, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
