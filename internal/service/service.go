package service

import (
	"github.com/sirupsen/logrus"

	"github.com/mwatts/notedeck/internal/auth"
	"github.com/mwatts/notedeck/internal/repository"
)

// Service is the central business logic layer. It owns validation, ownership
// scoping, and the error taxonomy, so the transport layer stays a thin
// envelope around it.
type Service struct {
	logger   *logrus.Logger
	tokens   *auth.TokenManager
	Users    repository.UserRepository
	Notes    repository.NoteRepository
	Comments repository.CommentRepository
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger, tokens *auth.TokenManager,
	users repository.UserRepository,
	notes repository.NoteRepository,
	comments repository.CommentRepository,
) *Service {
	return &Service{
		logger: logger, tokens: tokens,
		Users: users, Notes: notes, Comments: comments,
	}
}
