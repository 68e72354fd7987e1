package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mwatts/notedeck/internal/auth"
	"github.com/mwatts/notedeck/internal/models"
	"github.com/mwatts/notedeck/internal/repository"
)

// NoteUpdate carries the mutable fields of a note. Nil means "leave
// untouched"; everything else a client might send (owner, author) is not
// representable here and therefore cannot be hijacked through an update.
type NoteUpdate struct {
	Title *string
	Body  *string
}

// ListNotes returns all notes owned by ownerID, newest first.
func (s *Service) ListNotes(ctx context.Context, ownerID string) ([]*models.Note, error) {
	notes, err := s.Notes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for user %s: %w", ownerID, err)
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	return notes, nil
}

// GetNote returns the note with the given id if ownerID owns it, and
// ErrNotFound otherwise.
func (s *Service) GetNote(ctx context.Context, ownerID, noteID string) (*models.Note, error) {
	note, err := s.Notes.GetByOwner(ctx, ownerID, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note %s: %w", noteID, err)
	}
	if note == nil {
		return nil, ErrNotFound
	}
	return note, nil
}

// CreateNote creates a note owned by the caller. Owner and author come from
// the verified identity, never from client input.
func (s *Service) CreateNote(ctx context.Context, ident *auth.Identity, title, body string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErrorf("title is required")
	}

	note := &models.Note{
		UserID: ident.UserID,
		Title:  title,
		Body:   body,
		Author: ident.Username,
	}
	note, err := s.Notes.Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to create note for user %s: %w", ident.UserID, err)
	}

	s.logger.Infof("Created note %s for user %s", note.ID, ident.UserID)
	return note, nil
}

// UpdateNote merges the supplied fields into an owned note. Absent fields are
// left as they are; a supplied blank title is rejected because a note cannot
// lose its title after creation.
func (s *Service) UpdateNote(ctx context.Context, ownerID, noteID string, upd NoteUpdate) (*models.Note, error) {
	note, err := s.GetNote(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, validationErrorf("title is required")
		}
		note.Title = title
	}
	if upd.Body != nil {
		note.Body = *upd.Body
	}

	note, err = s.Notes.Update(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to update note %s: %w", noteID, err)
	}
	if note == nil {
		// Deleted between the read and the write; same answer as never there.
		return nil, ErrNotFound
	}
	return note, nil
}

// DeleteNote removes an owned note and every comment attached to it, and
// returns the note's prior state. Comments go first: a failure between the
// two steps leaves a comment-less note, never an orphaned comment.
func (s *Service) DeleteNote(ctx context.Context, ownerID, noteID string) (*models.Note, error) {
	note, err := s.GetNote(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.Comments.DeleteByNoteID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete comments for note %s: %w", noteID, err)
	}

	if err := s.Notes.Delete(ctx, ownerID, noteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between the read and the write; same answer as never there.
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete note %s: %w", noteID, err)
	}

	s.logger.Infof("Deleted note %s and %d comments for user %s", noteID, deleted, ownerID)
	return note, nil
}
