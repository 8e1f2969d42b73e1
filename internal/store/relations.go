package store

import (
	"database/sql"
	"fmt"

	"github.com/starford/ansuz/internal/models"
)

// AddRelation links two ideas and returns the relation id. The pair is
// stored as given but queried symmetrically. Endpoint existence is the
// caller's responsibility; self-relations and duplicates are permitted.
func (db *DB) AddRelation(id1, id2 int64, relType, note string) (int64, error) {
	if relType == "" {
		relType = "related"
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		INSERT INTO relations (idea_id_1, idea_id_2, relation_type, note, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id1, id2, relType, nullable(note), db.now())
	if err != nil {
		return 0, fmt.Errorf("store: insert relation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: relation id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return id, nil
}

// Relations returns every relation where the idea is either endpoint,
// enriched with the titles of both endpoints.
func (db *DB) Relations(ideaID int64) ([]models.Relation, error) {
	rows, err := db.conn.Query(`
		SELECT r.id, r.idea_id_1, r.idea_id_2, r.relation_type, r.note, r.created_at,
		       i1.title, i2.title
		FROM relations r
		JOIN ideas i1 ON r.idea_id_1 = i1.id
		JOIN ideas i2 ON r.idea_id_2 = i2.id
		WHERE r.idea_id_1 = ? OR r.idea_id_2 = ?
		ORDER BY r.created_at DESC`, ideaID, ideaID)
	if err != nil {
		return nil, fmt.Errorf("store: relations: %w", err)
	}
	defer rows.Close()

	var out []models.Relation
	for rows.Next() {
		var (
			r    models.Relation
			note sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.IdeaID1, &r.IdeaID2, &r.Type, &note, &r.CreatedAt,
			&r.Title1, &r.Title2); err != nil {
			return nil, err
		}
		r.Note = note.String
		out = append(out, r)
	}
	return out, rows.Err()
}
