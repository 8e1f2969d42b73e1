package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/slug"
)

// summaryLen bounds the auto-derived summary.
const summaryLen = 100

// CreateIdea is the input for Create. Slug and Summary are derived when
// empty; Source defaults to "chat".
type CreateIdea struct {
	Title    string
	Content  string
	Category string
	Summary  string
	Source   string
	Slug     string
	Tags     []string
}

// CreateResult reports the outcome of a Create.
type CreateResult struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Updated bool   `json:"updated"`
}

// UpdateIdea carries the mutable fields of an idea. Nil pointers are left
// untouched; a nil Tags slice leaves tag links alone, a non-nil one is an
// authoritative replacement set.
type UpdateIdea struct {
	Title    *string
	Content  *string
	Category *string
	Summary  *string
	Source   *string
	Tags     []string
}

// Create inserts a new idea, upserting by slug: when the derived or
// supplied slug already exists, the existing row is updated in place
// instead of inserting a duplicate.
func (db *DB) Create(in CreateIdea) (CreateResult, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return CreateResult{}, fmt.Errorf("store: title and content are required: %w", apperr.ErrValidation)
	}

	now := db.now()
	if in.Slug == "" {
		in.Slug = slug.Make(in.Title, now)
	}
	if in.Summary == "" {
		in.Summary = deriveSummary(in.Content)
	}
	if in.Source == "" {
		in.Source = "chat"
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return CreateResult{}, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var existing int64
	updated := tx.QueryRow(`SELECT id FROM ideas WHERE slug = ?`, in.Slug).Scan(&existing) == nil

	_, err = tx.Exec(`
		INSERT INTO ideas (slug, title, content, category, summary, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			category   = excluded.category,
			summary    = excluded.summary,
			source     = excluded.source,
			updated_at = excluded.updated_at
	`, in.Slug, in.Title, in.Content, nullable(in.Category), nullable(in.Summary), in.Source, now, now)
	if err != nil {
		return CreateResult{}, fmt.Errorf("store: insert idea: %w", err)
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM ideas WHERE slug = ?`, in.Slug).Scan(&id); err != nil {
		return CreateResult{}, fmt.Errorf("store: resolve idea id: %w", err)
	}

	if in.Tags != nil {
		if err := replaceTags(tx, id, in.Tags); err != nil {
			return CreateResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return CreateResult{}, fmt.Errorf("store: commit: %w", err)
	}
	return CreateResult{ID: id, Slug: in.Slug, Title: in.Title, Updated: updated}, nil
}

// Get returns a single idea with its tag names, or nil when absent.
func (db *DB) Get(id int64) (*models.Idea, error) {
	return db.getWhere(`id = ?`, id)
}

// GetBySlug returns a single idea by slug, or nil when absent.
func (db *DB) GetBySlug(s string) (*models.Idea, error) {
	return db.getWhere(`slug = ?`, s)
}

func (db *DB) getWhere(cond string, arg any) (*models.Idea, error) {
	row := db.conn.QueryRow(`
		SELECT id, slug, title, content, category, summary, source, created_at, updated_at
		FROM ideas WHERE `+cond, arg)

	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get idea: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT t.name FROM tags t
		JOIN idea_tags it ON t.id = it.tag_id
		WHERE it.idea_id = ?
		ORDER BY t.name`, idea.ID)
	if err != nil {
		return nil, fmt.Errorf("store: get idea tags: %w", err)
	}
	defer rows.Close()
	idea.Tags = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		idea.Tags = append(idea.Tags, name)
	}
	return idea, rows.Err()
}

// Update mutates the supplied fields of an idea. It returns false without
// touching storage when no field is set, and false when the id does not
// exist; updated_at is refreshed on every accepted update.
func (db *DB) Update(id int64, in UpdateIdea) (bool, error) {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+" = ?")
			args = append(args, *v)
		}
	}
	add("title", in.Title)
	add("content", in.Content)
	add("category", in.Category)
	add("summary", in.Summary)
	add("source", in.Source)

	if len(set) == 0 && in.Tags == nil {
		return false, nil
	}

	set = append(set, "updated_at = ?")
	args = append(args, db.now(), id)

	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`UPDATE ideas SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("store: update idea: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}

	if in.Tags != nil {
		if err := replaceTags(tx, id, in.Tags); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: commit: %w", err)
	}
	return true, nil
}

// Delete removes an idea. Tag links and relations go with it via foreign
// key cascade. Returns true iff a row was removed.
func (db *DB) Delete(id int64) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM ideas WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("store: delete idea: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("store: commit: %w", err)
	}
	return n > 0, nil
}

// SearchFilter selects ideas. All provided filters are ANDed; a zero
// filter lists the most recent ideas.
type SearchFilter struct {
	Keyword  string
	Category string
	Tag      string
	Limit    int
	Offset   int
}

// Search returns matching ideas, newest first, each with its tag names.
// Keyword is a plain substring match across title, content, and summary.
func (db *DB) Search(f SearchFilter) ([]models.Idea, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	conds := []string{}
	args := []any{}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		conds = append(conds, `(d.title LIKE ? OR d.content LIKE ? OR d.summary LIKE ?)`)
		args = append(args, like, like, like)
	}
	if f.Category != "" {
		conds = append(conds, `d.category = ?`)
		args = append(args, f.Category)
	}
	if f.Tag != "" {
		// Tag names are stored lowercased; normalize the filter the same
		// way so any spelling accepted at write time matches.
		conds = append(conds, `d.id IN (
			SELECT it.idea_id FROM idea_tags it
			JOIN tags t ON it.tag_id = t.id
			WHERE t.name = ?)`)
		args = append(args, strings.ToLower(strings.TrimSpace(f.Tag)))
	}
	where := "1=1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Offset)

	rows, err := db.conn.Query(`
		SELECT d.id, d.slug, d.title, d.content, d.category, d.summary, d.source,
		       d.created_at, d.updated_at, GROUP_CONCAT(t.name)
		FROM ideas d
		LEFT JOIN idea_tags it ON d.id = it.idea_id
		LEFT JOIN tags t ON it.tag_id = t.id
		WHERE `+where+`
		GROUP BY d.id
		ORDER BY d.created_at DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []models.Idea
	for rows.Next() {
		idea, err := scanIdeaRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *idea)
	}
	return out, rows.Err()
}

// scanIdeaRow scans a row from a GROUP_CONCAT tag query.
func scanIdeaRow(rows *sql.Rows) (*models.Idea, error) {
	var (
		idea     models.Idea
		category sql.NullString
		summary  sql.NullString
		tagsCSV  sql.NullString
	)
	if err := rows.Scan(&idea.ID, &idea.Slug, &idea.Title, &idea.Content, &category,
		&summary, &idea.Source, &idea.CreatedAt, &idea.UpdatedAt, &tagsCSV); err != nil {
		return nil, err
	}
	idea.Category = category.String
	idea.Summary = summary.String
	idea.Tags = []string{}
	if tagsCSV.String != "" {
		idea.Tags = strings.Split(tagsCSV.String, ",")
	}
	return &idea, nil
}

// Recent lists the newest ideas.
func (db *DB) Recent(limit int) ([]models.Idea, error) {
	return db.Search(SearchFilter{Limit: limit})
}

// Count returns the total number of ideas.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM ideas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// replaceTags makes tags the authoritative set for an idea: all existing
// links are dropped and the new names get-or-created and linked. Tag rows
// themselves are never deleted on unlink.
func replaceTags(tx *sql.Tx, ideaID int64, tags []string) error {
	if _, err := tx.Exec(`DELETE FROM idea_tags WHERE idea_id = ?`, ideaID); err != nil {
		return fmt.Errorf("store: clear tag links: %w", err)
	}
	for _, raw := range tags {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("store: insert tag: %w", err)
		}
		var tagID int64
		if err := tx.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("store: resolve tag id: %w", err)
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO idea_tags (idea_id, tag_id) VALUES (?, ?)`, ideaID, tagID); err != nil {
			return fmt.Errorf("store: link tag: %w", err)
		}
	}
	return nil
}

// deriveSummary strips markup punctuation from content and takes a
// bounded prefix, appending an ellipsis when truncated.
func deriveSummary(content string) string {
	plain := strings.Map(func(r rune) rune {
		switch r {
		case '#', '*', '`', '[', ']', '(', ')', '>', '-':
			return -1
		}
		return r
	}, content)
	runes := []rune(plain)
	if len(runes) <= summaryLen {
		return strings.TrimSpace(plain)
	}
	return strings.TrimSpace(string(runes[:summaryLen])) + "..."
}

func scanIdea(row *sql.Row) (*models.Idea, error) {
	var (
		idea     models.Idea
		category sql.NullString
		summary  sql.NullString
	)
	err := row.Scan(&idea.ID, &idea.Slug, &idea.Title, &idea.Content, &category,
		&summary, &idea.Source, &idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		return nil, err
	}
	idea.Category = category.String
	idea.Summary = summary.String
	return &idea, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
