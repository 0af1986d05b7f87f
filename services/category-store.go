package services

import (
	"context"

	"github.com/TechSupportz/tasky-server/models"
)

// CategoryStore is the single authority over category records. All reads
// and writes of category state go through this contract so the in-memory,
// MongoDB and SQLite backends stay interchangeable.
type CategoryStore interface {
	// ListForUser returns group categories the user is a member of plus
	// personal categories the user created.
	ListForUser(ctx context.Context, userID int64) ([]models.Category, error)

	// GetByID returns ErrCategoryNotFound when no record matches.
	GetByID(ctx context.Context, id int64) (*models.Category, error)

	// IsGroup returns false for unknown ids rather than failing.
	IsGroup(ctx context.Context, id int64) bool

	// Create assigns the next id from a monotonic sequence. Ids are never
	// reused, even after deletions.
	Create(ctx context.Context, creatorID int64, name string, categoryType models.CategoryType) (*models.Category, error)

	// AddMember appends the member to a group category. Missing or
	// personal categories are a silent no-op. Duplicate prevention is the
	// caller's responsibility.
	AddMember(ctx context.Context, categoryID int64, member models.Member) error

	// RemoveMember removes the first entry matching userID and returns
	// ErrMemberNotFound when no entry matches.
	RemoveMember(ctx context.Context, categoryID int64, userID int64) error

	// Update replaces the record with the matching id in full. It returns
	// ErrCategoryNotFound for unknown ids and never inserts.
	Update(ctx context.Context, category models.Category) (*models.Category, error)

	// Remove deletes the record if present; absence is not an error.
	Remove(ctx context.Context, id int64) error
}

// TaskStore owns task records, keyed by their category.
type TaskStore interface {
	GetByCategoryID(ctx context.Context, categoryID int64) ([]models.Task, error)
	Add(ctx context.Context, categoryID, creatorID int64, name, dueDate string, priority models.Priority) (*models.Task, error)
	AddSubTask(ctx context.Context, taskID int64, name, dueDate string, priority models.Priority) (*models.Task, error)

	// RemoveByCategoryID deletes every task owned by the category and
	// returns the number removed. Category deletion cascades through it.
	RemoveByCategoryID(ctx context.Context, categoryID int64) (int64, error)

	// ListAll is used by the reminder sweep.
	ListAll(ctx context.Context) ([]models.Task, error)
}
