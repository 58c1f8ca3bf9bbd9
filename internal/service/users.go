package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/model"
)

// ListUsers returns all accounts, newest first.
func (a *Auth) ListUsers(ctx context.Context) ([]model.Profile, error) {
	users, err := a.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	profiles := make([]model.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (a *Auth) GetUser(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	return a.Me(ctx, id)
}

// UpdateRole sets the role of an account.
func (a *Auth) UpdateRole(ctx context.Context, id uuid.UUID, role string) (model.Profile, error) {
	parsed, ok := model.ParseRole(role)
	if !ok {
		return model.Profile{}, model.NewError(model.KindInvalidArgument, "invalid role, must be User or Admin")
	}

	now := a.clock()
	user, err := update(ctx, a.store, a.loadExisting(id),
		func(user model.User) (model.User, error) {
			if user.Role == parsed {
				return user, errUnchanged
			}
			user.Role = parsed
			user.UpdatedAt = now
			return user, nil
		},
	)
	if err != nil {
		return model.Profile{}, err
	}

	a.logger.Info("Auth service: role updated",
		"user_id", id,
		"role", parsed)

	return user.Profile(), nil
}

// Deactivate soft-deletes an account. It can no longer authenticate and its
// refresh session and pending reset are cleared.
func (a *Auth) Deactivate(ctx context.Context, id uuid.UUID) error {
	now := a.clock()
	_, err := update(ctx, a.store, a.loadExisting(id),
		func(user model.User) (model.User, error) {
			if !user.IsActive {
				return user, errUnchanged
			}
			user.IsActive = false
			user.RevokeSession(now)
			user.ClearPasswordReset()
			user.UpdatedAt = now
			return user, nil
		},
	)
	if err != nil {
		return err
	}

	a.logger.Info("Auth service: user deactivated",
		"user_id", id)

	return nil
}

func (a *Auth) loadExisting(id uuid.UUID) func(ctx context.Context) (model.User, error) {
	return func(ctx context.Context) (model.User, error) {
		user, err := a.store.GetByID(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.NewError(model.KindNotFound, "user not found")
		}
		return user, err
	}
}
