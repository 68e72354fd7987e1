package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mwatts/notedeck/internal/models"
)

// Register creates a new account and returns the user together with a freshly
// issued token, so a client is signed in immediately after registering.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, "", validationErrorf("username is required")
	}
	if email == "" {
		return nil, "", validationErrorf("email is required")
	}
	if password == "" {
		return nil, "", validationErrorf("password is required")
	}

	existing, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to lookup user %q: %w", username, err)
	}
	if existing != nil {
		return nil, "", validationErrorf("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	user, err = s.Users.Create(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user %q: %w", username, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token for user %s: %w", user.ID, err)
	}

	s.logger.Infof("Registered new user %q (id=%s)", user.Username, user.ID)
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown usernames and wrong
// passwords both fail with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)

	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to lookup user %q: %w", username, err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token for user %s: %w", user.ID, err)
	}

	return user, token, nil
}
