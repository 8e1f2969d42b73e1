// Package models defines the domain types for Ansuz.
package models

import "time"

// Idea represents a stored idea or document.
type Idea struct {
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Source    string    `json:"source"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Relation is an undirected, typed link between two ideas. The pair is
// stored ordered but queried symmetrically; Title1/Title2 are resolved
// from the endpoints on read.
type Relation struct {
	ID        int64     `json:"id"`
	IdeaID1   int64     `json:"idea_id_1"`
	IdeaID2   int64     `json:"idea_id_2"`
	Type      string    `json:"relation_type"`
	Note      string    `json:"note,omitempty"`
	Title1    string    `json:"title_1"`
	Title2    string    `json:"title_2"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryCount is one row of the category listing.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TagCount is one row of the tag listing. Count may be zero for tags
// that currently have no linked ideas.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
