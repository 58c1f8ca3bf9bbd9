package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// refreshSecretBytes is the entropy of a refresh token before encoding.
const refreshSecretBytes = 32

// RefreshTokenManager keeps at most one live refresh session per user.
// Only a hash of the secret is stored.
type RefreshTokenManager struct {
	store  model.CredentialStore
	hasher model.PasswordHasher
	ttl    time.Duration
	logger *logger.Logger
	random io.Reader
}

func NewRefreshTokenManager(
	store model.CredentialStore,
	hasher model.PasswordHasher,
	ttl time.Duration,
	logger *logger.Logger,
) *RefreshTokenManager {
	return &RefreshTokenManager{
		store:  store,
		hasher: hasher,
		ttl:    ttl,
		logger: logger,
		random: rand.Reader,
	}
}

// Issue stamps a fresh refresh session onto user and returns the updated
// snapshot with the plaintext secret. The caller persists the snapshot.
func (m *RefreshTokenManager) Issue(user model.User, now time.Time) (model.User, string, error) {
	secret, err := m.newSecret()
	if err != nil {
		return model.User{}, "", err
	}

	digest, err := m.hasher.Hash(secret)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to hash refresh token: %w", err)
	}

	user.RefreshTokenHash = digest
	user.RefreshTokenExpiry = now.Add(m.ttl)
	user.RevokedOn = nil
	user.UpdatedAt = now

	return user, secret, nil
}

// Rotate exchanges a presented refresh token for a new one. The old secret
// stops working once the new one is stored, so of two concurrent rotations
// with the same secret at most one succeeds.
func (m *RefreshTokenManager) Rotate(ctx context.Context, userID uuid.UUID, presented string, now time.Time) (model.User, string, error) {
	var secret string

	user, err := update(ctx, m.store,
		func(ctx context.Context) (model.User, error) {
			user, err := m.store.GetByID(ctx, userID)
			if errors.Is(err, model.ErrNotFound) {
				return model.User{}, model.NewError(model.KindUnauthorized, "invalid refresh token")
			}
			return user, err
		},
		func(user model.User) (model.User, error) {
			if err := m.check(user, presented, now); err != nil {
				return model.User{}, err
			}

			next, issued, err := m.Issue(user, now)
			if err != nil {
				return model.User{}, err
			}
			secret = issued
			return next, nil
		},
	)
	if err != nil {
		return model.User{}, "", err
	}

	m.logger.Debug("Refresh token manager: rotated refresh token",
		"user_id", userID)

	return user, secret, nil
}

// Revoke ends the user's refresh session. Revoking a session that is
// already revoked or expired succeeds without writing.
func (m *RefreshTokenManager) Revoke(ctx context.Context, userID uuid.UUID, now time.Time) error {
	_, err := update(ctx, m.store,
		func(ctx context.Context) (model.User, error) {
			user, err := m.store.GetByID(ctx, userID)
			if errors.Is(err, model.ErrNotFound) {
				return model.User{}, model.NewError(model.KindNotFound, "user not found")
			}
			return user, err
		},
		func(user model.User) (model.User, error) {
			if !user.HasActiveSession(now) {
				return user, errUnchanged
			}
			user.RevokeSession(now)
			user.UpdatedAt = now
			return user, nil
		},
	)
	if err != nil {
		return err
	}

	m.logger.Debug("Refresh token manager: revoked refresh token",
		"user_id", userID)

	return nil
}

func (m *RefreshTokenManager) check(user model.User, presented string, now time.Time) error {
	if !user.IsActive {
		return model.NewError(model.KindUnauthorized, "invalid refresh token")
	}
	if user.RefreshTokenHash == "" || presented == "" {
		return model.NewError(model.KindUnauthorized, "invalid refresh token")
	}
	if !m.hasher.Verify(presented, user.RefreshTokenHash) {
		if user.HasActiveSession(now) {
			m.logger.Warn("Refresh token manager: presented refresh token does not match active session",
				"user_id", user.ID)
		}
		return model.NewError(model.KindUnauthorized, "invalid refresh token")
	}
	if !now.Before(user.RefreshTokenExpiry) {
		return model.NewError(model.KindUnauthorized, "refresh token expired")
	}
	if user.RevokedOn != nil {
		return model.NewError(model.KindUnauthorized, "refresh token revoked")
	}
	return nil
}

func (m *RefreshTokenManager) newSecret() (string, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := io.ReadFull(m.random, buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
