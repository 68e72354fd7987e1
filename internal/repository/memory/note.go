package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwatts/notedeck/internal/models"
	"github.com/mwatts/notedeck/internal/repository"
)

type noteRepository struct {
	mu    sync.RWMutex
	notes map[string]*models.Note
	seq   map[string]int // creation order, tie-break for equal timestamps
	next  int
}

// NewNoteRepository creates an in-memory note repository
func NewNoteRepository() repository.NoteRepository {
	return &noteRepository{
		notes: make(map[string]*models.Note),
		seq:   make(map[string]int),
	}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	note.UpdatedAt = now

	stored := *note
	r.notes[note.ID] = &stored
	r.next++
	r.seq[note.ID] = r.next
	return note, nil
}

func (r *noteRepository) GetByOwner(ctx context.Context, ownerID, id string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[id]
	if !ok || n.UserID != ownerID {
		return nil, nil
	}
	out := *n
	return &out, nil
}

func (r *noteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notes []*models.Note
	for _, n := range r.notes {
		if n.UserID == ownerID {
			out := *n
			notes = append(notes, &out)
		}
	}
	// Newest first, like the postgres implementation.
	sort.Slice(notes, func(i, j int) bool {
		return r.seq[notes[i].ID] > r.seq[notes[j].ID]
	})
	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return nil, nil
	}

	existing.Title = note.Title
	existing.Body = note.Body
	existing.UpdatedAt = time.Now()

	out := *existing
	return &out, nil
}

func (r *noteRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notes[id]
	if !ok || n.UserID != ownerID {
		return fmt.Errorf("note %s: %w", id, repository.ErrNotFound)
	}
	delete(r.notes, id)
	delete(r.seq, id)
	return nil
}
