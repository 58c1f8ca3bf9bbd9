package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/model"
)

// SeedAdmin creates an administrator account unless the email is taken.
func (a *Auth) SeedAdmin(ctx context.Context, email, password string) error {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	_, err := a.store.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Debug("Auth service: admin account already present",
			"email", email)
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	digest, err := a.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := a.clock()
	created, err := createWithUniqueUsername(ctx, a.store, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: digest,
		Role:         model.RoleAdmin,
		AuthProvider: model.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
	})
	if isDuplicateField(err, "email") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	a.logger.Info("Auth service: admin account seeded",
		"user_id", created.ID,
		"username", created.Username)

	return nil
}
