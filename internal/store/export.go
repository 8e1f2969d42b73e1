package store

import (
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// SelectFilter is the richer, export-facing selection: date bounds are
// inclusive YYYY-MM-DD strings, Search is a plain substring across title
// and content, and Ascending flips the created_at ordering.
type SelectFilter struct {
	Since     string
	Until     string
	Source    string
	Search    string
	Limit     int
	Ascending bool
}

// Select returns ideas matching the filter, ordered by created_at.
func (db *DB) Select(f SelectFilter) ([]models.Idea, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	conds := []string{}
	args := []any{}
	if f.Since != "" {
		conds = append(conds, `date(d.created_at) >= ?`)
		args = append(args, f.Since)
	}
	if f.Until != "" {
		conds = append(conds, `date(d.created_at) <= ?`)
		args = append(args, f.Until)
	}
	if f.Source != "" {
		conds = append(conds, `d.source = ?`)
		args = append(args, f.Source)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, `(d.title LIKE ? OR d.content LIKE ?)`)
		args = append(args, like, like)
	}
	where := "1=1"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}
	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	args = append(args, f.Limit)

	rows, err := db.conn.Query(`
		SELECT d.id, d.slug, d.title, d.content, d.category, d.summary, d.source,
		       d.created_at, d.updated_at, GROUP_CONCAT(t.name)
		FROM ideas d
		LEFT JOIN idea_tags it ON d.id = it.idea_id
		LEFT JOIN tags t ON it.tag_id = t.id
		WHERE `+where+`
		GROUP BY d.id
		ORDER BY d.created_at `+order+`
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: select: %w", err)
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
