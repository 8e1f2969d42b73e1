package store

import (
	"fmt"

	"github.com/starford/ansuz/internal/models"
)

// Categories returns distinct non-empty categories with idea counts,
// most used first.
func (db *DB) Categories() ([]models.CategoryCount, error) {
	rows, err := db.conn.Query(`
		SELECT category, COUNT(*) AS count
		FROM ideas
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category
		ORDER BY count DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: categories: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Tags returns every tag with its usage count, most used first. The left
// join keeps tags whose count dropped to zero.
func (db *DB) Tags() ([]models.TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT t.name, COUNT(it.idea_id) AS count
		FROM tags t
		LEFT JOIN idea_tags it ON t.id = it.tag_id
		GROUP BY t.id
		ORDER BY count DESC, t.name`)
	if err != nil {
		return nil, fmt.Errorf("store: tags: %w", err)
	}
	defer rows.Close()

	var out []models.TagCount
	for rows.Next() {
		var t models.TagCount
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
