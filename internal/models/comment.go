package models

import "time"

// Comment represents a comment attached to a note. Comments are append-only:
// they are never edited and are removed only when their parent note is deleted.
// Content is plain text; markup is stripped before storage.
type Comment struct {
	ID        string    `json:"id" db:"id"`
	NoteID    string    `json:"note_id" db:"note_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Author    string    `json:"author" db:"author"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
