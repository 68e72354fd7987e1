package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwatts/notedeck/internal/models"
	"github.com/mwatts/notedeck/internal/repository"
)

type commentRepository struct {
	mu       sync.RWMutex
	comments []*models.Comment // insertion order == creation order
}

// NewCommentRepository creates an in-memory comment repository
func NewCommentRepository() repository.CommentRepository {
	return &commentRepository{}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()

	stored := *comment
	r.comments = append(r.comments, &stored)
	return comment, nil
}

func (r *commentRepository) ListByNoteID(ctx context.Context, noteID string, filters repository.CommentFilters) ([]*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*models.Comment
	for _, c := range r.comments {
		if c.NoteID == noteID {
			out := *c
			matched = append(matched, &out)
		}
	}

	if !filters.Ascending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	if filters.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filters.Offset:]
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	return matched, nil
}

func (r *commentRepository) CountByNoteID(ctx context.Context, noteID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, c := range r.comments {
		if c.NoteID == noteID {
			count++
		}
	}
	return count, nil
}

func (r *commentRepository) DeleteByNoteID(ctx context.Context, noteID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []*models.Comment
	var deleted int64
	for _, c := range r.comments {
		if c.NoteID == noteID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return deleted, nil
}
