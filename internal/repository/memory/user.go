// Package memory keeps credentials in process memory for development and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/model"
)

var _ model.CredentialStore = (*UserRepository)(nil)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[uuid.UUID]model.User),
	}
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return clone(user), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	return r.find(func(u model.User) bool { return email != "" && u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByGoogleID(_ context.Context, googleID string) (model.User, error) {
	return r.find(func(u model.User) bool { return googleID != "" && u.GoogleID == googleID })
}

func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, clone(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *UserRepository) Create(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return model.User{}, &model.DuplicateError{Field: "id"}
	}
	if err := r.checkUnique(user); err != nil {
		return model.User{}, err
	}

	user.Version = 1
	r.users[user.ID] = clone(user)
	return clone(user), nil
}

func (r *UserRepository) Save(_ context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok || stored.Version != user.Version {
		return model.User{}, model.ErrStaleWrite
	}
	if err := r.checkUnique(user); err != nil {
		return model.User{}, err
	}

	user.Version++
	r.users[user.ID] = clone(user)
	return clone(user), nil
}

func (r *UserRepository) Ping(context.Context) error {
	return nil
}

func (r *UserRepository) find(match func(model.User) bool) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return model.User{}, model.ErrNotFound
}

// checkUnique must be called with the write lock held.
func (r *UserRepository) checkUnique(user model.User) error {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		switch {
		case u.Username == user.Username:
			return &model.DuplicateError{Field: "username"}
		case user.Email != "" && u.Email == user.Email:
			return &model.DuplicateError{Field: "email"}
		case user.GoogleID != "" && u.GoogleID == user.GoogleID:
			return &model.DuplicateError{Field: "google_id"}
		}
	}
	return nil
}

func clone(u model.User) model.User {
	u.RevokedOn = copyTime(u.RevokedOn)
	u.PasswordResetOTPExpiry = copyTime(u.PasswordResetOTPExpiry)
	u.LastLoginAt = copyTime(u.LastLoginAt)
	return u
}

func copyTime[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
