package models

import "time"

// Note represents a note owned by a single user. UserID and Author are stamped
// from the caller's verified identity at creation and never change afterwards;
// Author is a display cache of the owner's username at creation time.
type Note struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Author    string    `json:"author" db:"author"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
