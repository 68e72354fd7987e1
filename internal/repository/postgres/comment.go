package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mwatts/notedeck/internal/models"
	"github.com/mwatts/notedeck/internal/repository"
)

type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query := `
		INSERT INTO comments (id, note_id, user_id, author, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		comment.ID,
		comment.NoteID,
		comment.UserID,
		comment.Author,
		comment.Content,
		comment.CreatedAt,
	).Scan(&comment.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

func (r *commentRepository) ListByNoteID(ctx context.Context, noteID string, filters repository.CommentFilters) ([]*models.Comment, error) {
	order := "DESC"
	if filters.Ascending {
		order = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT id, note_id, user_id, author, content, created_at
		FROM comments
		WHERE note_id = $1
		ORDER BY created_at %s
		LIMIT $2 OFFSET $3`, order)

	rows, err := r.db.QueryContext(ctx, query, noteID, filters.Limit, filters.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.NoteID, &c.UserID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *commentRepository) CountByNoteID(ctx context.Context, noteID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE note_id = $1`, noteID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

func (r *commentRepository) DeleteByNoteID(ctx context.Context, noteID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE note_id = $1`, noteID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}
