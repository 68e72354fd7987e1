package repository

import (
	"context"
	"errors"

	"github.com/mwatts/notedeck/internal/models"
)

// ErrNotFound is returned by writes that match no row. Reads report absence
// as a nil result instead.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// NoteRepository defines the interface for note data operations. Every read
// and write is scoped by the owning user id; a note belonging to another user
// is indistinguishable from one that does not exist.
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	GetByOwner(ctx context.Context, ownerID, id string) (*models.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) (*models.Note, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// CommentRepository defines the interface for comment data operations.
// Ownership checks happen against the parent note, so comment queries are
// keyed by note id only.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListByNoteID(ctx context.Context, noteID string, filters CommentFilters) ([]*models.Comment, error)
	CountByNoteID(ctx context.Context, noteID string) (int, error)
	DeleteByNoteID(ctx context.Context, noteID string) (int64, error)
}

// CommentFilters represents pagination and ordering for comment queries
type CommentFilters struct {
	Ascending bool
	Limit     int
	Offset    int
}
