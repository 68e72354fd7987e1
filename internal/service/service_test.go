package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwatts/notedeck/internal/auth"
	"github.com/mwatts/notedeck/internal/models"
	"github.com/mwatts/notedeck/internal/repository/memory"
)

func newTestService() *Service {
	l := logrus.New()
	l.SetOutput(io.Discard)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return New(l, tokens,
		memory.NewUserRepository(),
		memory.NewNoteRepository(),
		memory.NewCommentRepository(),
	)
}

// mustRegister creates an account and returns the caller identity the auth
// middleware would have resolved for it.
func mustRegister(t *testing.T, s *Service, username string) (*models.User, *auth.Identity) {
	t.Helper()
	user, _, err := s.Register(context.Background(), username, username+"@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Register(%q) returned error: %v", username, err)
	}
	return user, &auth.Identity{UserID: user.ID, Username: user.Username}
}
