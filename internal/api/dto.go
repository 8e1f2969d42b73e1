package api

// CreateIdeaRequest is the request body for creating an idea.
type CreateIdeaRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Summary  string   `json:"summary"`
	Source   string   `json:"source"`
	Slug     string   `json:"slug"`
	Tags     []string `json:"tags"`
	Keywords []string `json:"keywords"` // accepted alias for tags
}

// UpdateIdeaRequest carries the optional fields of an update. Absent JSON
// keys stay nil and the corresponding columns are left untouched.
type UpdateIdeaRequest struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Category *string  `json:"category"`
	Summary  *string  `json:"summary"`
	Source   *string  `json:"source"`
	Tags     []string `json:"tags"`
	Keywords []string `json:"keywords"`
}

// AddRelationRequest is the request body for linking two ideas.
type AddRelationRequest struct {
	IdeaID1 int64  `json:"idea_id_1"`
	IdeaID2 int64  `json:"idea_id_2"`
	Type    string `json:"relation_type"`
	Note    string `json:"note"`
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// tagsOrKeywords resolves the tag alias: "tags" wins, "keywords" is the
// fallback the original chat clients send.
func tagsOrKeywords(tags, keywords []string) []string {
	if tags != nil {
		return tags
	}
	return keywords
}
