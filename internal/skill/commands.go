package skill

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/store"
)

func (r *Runner) add(ctx context.Context, input string) {
	if input == "" {
		r.fail("missing input data")
		return
	}
	var payload struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Category string   `json:"category"`
		Summary  string   `json:"summary"`
		Source   string   `json:"source"`
		Tags     []string `json:"tags"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(input), &payload); err != nil {
		r.fail("invalid JSON: %v", err)
		return
	}
	if payload.Title == "" || payload.Content == "" {
		r.fail("title and content are required")
		return
	}
	tags := payload.Tags
	if tags == nil {
		tags = payload.Keywords
	}
	res, err := r.svc.Create(ctx, store.CreateIdea{
		Title:    payload.Title,
		Content:  payload.Content,
		Category: payload.Category,
		Summary:  payload.Summary,
		Source:   payload.Source,
		Tags:     tags,
	})
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.emit(map[string]any{
		"id":      res.ID,
		"slug":    res.Slug,
		"message": fmt.Sprintf("idea saved with ID %d", res.ID),
	})
}

func (r *Runner) get(ctx context.Context, input string) {
	if input == "" {
		r.fail("missing id")
		return
	}
	id, ok := parseID(input)
	if !ok {
		r.fail("invalid id format")
		return
	}
	idea, relations, err := r.svc.Get(ctx, id)
	if err != nil {
		r.fail("%v", err)
		return
	}
	if idea == nil {
		r.fail("idea %d not found", id)
		return
	}
	r.emit(map[string]any{"idea": idea, "relations": relations})
}

func (r *Runner) update(ctx context.Context, input string) {
	if input == "" {
		r.fail("missing input data")
		return
	}
	var payload struct {
		ID       int64    `json:"id"`
		Title    *string  `json:"title"`
		Content  *string  `json:"content"`
		Category *string  `json:"category"`
		Summary  *string  `json:"summary"`
		Source   *string  `json:"source"`
		Tags     []string `json:"tags"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(input), &payload); err != nil {
		r.fail("invalid JSON: %v", err)
		return
	}
	if payload.ID == 0 {
		r.fail("missing id")
		return
	}
	tags := payload.Tags
	if tags == nil {
		tags = payload.Keywords
	}
	ok, err := r.svc.Update(ctx, payload.ID, store.UpdateIdea{
		Title:    payload.Title,
		Content:  payload.Content,
		Category: payload.Category,
		Summary:  payload.Summary,
		Source:   payload.Source,
		Tags:     tags,
	})
	if err != nil {
		r.fail("%v", err)
		return
	}
	if !ok {
		r.fail("idea %d not found or no fields to update", payload.ID)
		return
	}
	idea, _, _ := r.svc.Get(ctx, payload.ID)
	r.emit(map[string]any{
		"message": fmt.Sprintf("idea %d updated", payload.ID),
		"idea":    idea,
	})
}

func (r *Runner) del(ctx context.Context, input string) {
	if input == "" {
		r.fail("missing id")
		return
	}
	id, ok := parseID(input)
	if !ok {
		r.fail("invalid id format")
		return
	}
	deleted, err := r.svc.Delete(ctx, id)
	if err != nil {
		r.fail("%v", err)
		return
	}
	if deleted == nil {
		r.fail("idea %d not found", id)
		return
	}
	r.emit(map[string]any{
		"message":      fmt.Sprintf("deleted idea: %s", deleted.Title),
		"deleted_idea": deleted,
	})
}

func (r *Runner) search(ctx context.Context, input string) {
	var filter store.SearchFilter
	if input != "" {
		var payload struct {
			Keyword  string `json:"keyword"`
			Category string `json:"category"`
			Tag      string `json:"tag"`
			Limit    int    `json:"limit"`
			Offset   int    `json:"offset"`
		}
		if err := json.Unmarshal([]byte(input), &payload); err != nil {
			// Not JSON: treat the whole input as a keyword.
			filter.Keyword = input
		} else {
			filter = store.SearchFilter{
				Keyword:  payload.Keyword,
				Category: payload.Category,
				Tag:      payload.Tag,
				Limit:    payload.Limit,
				Offset:   payload.Offset,
			}
		}
	}
	results, err := r.svc.Search(ctx, filter)
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.emit(map[string]any{"count": len(results), "results": results})
}

func (r *Runner) recent(ctx context.Context, input string) {
	limit := 10
	if input != "" {
		if id, ok := parseID(input); ok {
			limit = int(id)
		} else {
			var payload struct {
				Limit int `json:"limit"`
			}
			if json.Unmarshal([]byte(input), &payload) == nil && payload.Limit > 0 {
				limit = payload.Limit
			}
		}
	}
	results, err := r.svc.Recent(ctx, limit)
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.emit(map[string]any{"count": len(results), "results": results})
}

func (r *Runner) relate(ctx context.Context, input string) {
	if input == "" {
		r.fail("missing input data")
		return
	}
	var payload struct {
		IdeaID1 int64  `json:"idea_id_1"`
		IdeaID2 int64  `json:"idea_id_2"`
		Type    string `json:"relation_type"`
		Note    string `json:"note"`
	}
	if err := json.Unmarshal([]byte(input), &payload); err != nil {
		r.fail("invalid JSON: %v", err)
		return
	}
	if payload.IdeaID1 == 0 || payload.IdeaID2 == 0 {
		r.fail("idea_id_1 and idea_id_2 are required")
		return
	}
	relID, a, b, err := r.svc.Relate(ctx, payload.IdeaID1, payload.IdeaID2, payload.Type, payload.Note)
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.emit(map[string]any{
		"relation_id": relID,
		"message":     fmt.Sprintf("linked [%s] <-> [%s]", a.Title, b.Title),
	})
}

func (r *Runner) similar(ctx context.Context, input string) {
	if input == "" {
		r.fail("missing input data")
		return
	}
	var payload struct {
		Keywords []string `json:"keywords"`
		IdeaID   int64    `json:"idea_id"`
		Limit    int      `json:"limit"`
	}
	if err := json.Unmarshal([]byte(input), &payload); err != nil {
		r.fail("invalid JSON: %v", err)
		return
	}
	results, keywords, err := r.svc.Similar(ctx, payload.Keywords, payload.IdeaID, payload.Limit)
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.emit(map[string]any{
		"search_keywords": keywords,
		"count":           len(results),
		"similar_ideas":   results,
	})
}

// categories returns ideas of one category packaged for summarization,
// or the overall category statistics when no category is given.
func (r *Runner) categories(ctx context.Context, input string) {
	category := ""
	if input != "" {
		var payload struct {
			Category string `json:"category"`
		}
		if err := json.Unmarshal([]byte(input), &payload); err != nil {
			category = input
		} else {
			category = payload.Category
		}
	}

	if category == "" {
		cats, err := r.svc.Categories(ctx)
		if err != nil {
			r.fail("%v", err)
			return
		}
		r.emit(map[string]any{"categories": cats, "total_categories": len(cats)})
		return
	}

	ideas, err := r.svc.Search(ctx, store.SearchFilter{Category: category, Limit: 100})
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.emit(map[string]any{
		"category":       category,
		"count":          len(ideas),
		"ideas":          ideas,
		"summary_prompt": fmt.Sprintf("Summarize the following %d ideas about %q into a report.", len(ideas), category),
	})
}

var wordRe = regexp.MustCompile(`[\p{Han}a-zA-Z]+`)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "and": {}, "of": {},
	"to": {}, "in": {}, "it": {}, "this": {}, "that": {},
}

// format turns free-form text into a structured payload ready for the
// add skill: a derived title and a handful of candidate keywords.
func (r *Runner) format(input string) {
	text := strings.TrimSpace(input)
	if text == "" {
		r.fail("missing text to format")
		return
	}

	firstLine := strings.SplitN(text, "\n", 2)[0]
	title := truncateRunes(firstLine, 50)

	var keywords []string
	seen := map[string]struct{}{}
	for _, w := range wordRe.FindAllString(text, -1) {
		lower := strings.ToLower(w)
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := stopwords[lower]; stop {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, lower)
		if len(keywords) == 5 {
			break
		}
	}

	r.emit(map[string]any{
		"title":    title,
		"content":  text,
		"keywords": keywords,
	})
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
