package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mwatts/notedeck/internal/auth"
	"github.com/mwatts/notedeck/internal/models"
	"github.com/mwatts/notedeck/internal/repository"
)

const (
	defaultCommentLimit = 10
	maxCommentLimit     = 100
)

// sanitizer strips all markup from comment content before storage. A Policy
// is safe for concurrent use.
var sanitizer = bluemonday.StrictPolicy()

// ListCommentsOptions carries sorting and pagination for comment listings.
// Sort "oldest" is ascending creation order; anything else is descending.
// Pages are 1-indexed; out-of-range values fall back to defaults.
type ListCommentsOptions struct {
	Sort  string
	Page  int
	Limit int
}

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// AddComment appends a comment to a note the caller owns. Content must be
// non-blank and is stripped of all markup; content that is nothing but markup
// is rejected the same way blank content is.
func (s *Service) AddComment(ctx context.Context, ident *auth.Identity, noteID, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationErrorf("comment content is required")
	}

	if _, err := s.GetNote(ctx, ident.UserID, noteID); err != nil {
		return nil, err
	}

	sanitized := strings.TrimSpace(sanitizer.Sanitize(content))
	if sanitized == "" {
		return nil, validationErrorf("comment content is required")
	}

	comment := &models.Comment{
		NoteID:  noteID,
		UserID:  ident.UserID,
		Author:  ident.Username,
		Content: sanitized,
	}
	comment, err := s.Comments.Create(ctx, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment on note %s: %w", noteID, err)
	}

	s.logger.Infof("Added comment %s to note %s", comment.ID, noteID)
	return comment, nil
}

// ListComments returns one page of a note's comments plus pagination
// metadata. Access follows the same ownership rule as the note itself.
func (s *Service) ListComments(ctx context.Context, ownerID, noteID string, opts ListCommentsOptions) ([]*models.Comment, *PageMeta, error) {
	if _, err := s.GetNote(ctx, ownerID, noteID); err != nil {
		return nil, nil, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = defaultCommentLimit
	}
	if limit > maxCommentLimit {
		limit = maxCommentLimit
	}

	filters := repository.CommentFilters{
		Ascending: opts.Sort == "oldest",
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	comments, err := s.Comments.ListByNoteID(ctx, noteID, filters)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list comments for note %s: %w", noteID, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	total, err := s.Comments.CountByNoteID(ctx, noteID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count comments for note %s: %w", noteID, err)
	}

	meta := &PageMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
	return comments, meta, nil
}
