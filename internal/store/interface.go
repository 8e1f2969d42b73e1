package store

import "github.com/starford/ansuz/internal/models"

// IdeaStore defines the data-access operations. Consumers should depend
// on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type IdeaStore interface {
	Create(in CreateIdea) (CreateResult, error)
	Get(id int64) (*models.Idea, error)
	GetBySlug(slug string) (*models.Idea, error)
	Update(id int64, in UpdateIdea) (bool, error)
	Delete(id int64) (bool, error)
	Search(f SearchFilter) ([]models.Idea, error)
	Select(f SelectFilter) ([]models.Idea, error)
	Recent(limit int) ([]models.Idea, error)
	Categories() ([]models.CategoryCount, error)
	Tags() ([]models.TagCount, error)
	AddRelation(id1, id2 int64, relType, note string) (int64, error)
	Relations(ideaID int64) ([]models.Relation, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies IdeaStore at compile time.
var _ IdeaStore = (*DB)(nil)
