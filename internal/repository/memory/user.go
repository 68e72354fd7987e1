// Package memory provides map-backed implementations of the repository
// interfaces. They mirror the postgres semantics (owner scoping, nil on
// no match, insertion-ordered creation times) and back the unit tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwatts/notedeck/internal/models"
	"github.com/mwatts/notedeck/internal/repository"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewUserRepository creates an in-memory user repository
func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]*models.User)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, fmt.Errorf("duplicate key value violates unique constraint: username %q", user.Username)
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()

	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}
