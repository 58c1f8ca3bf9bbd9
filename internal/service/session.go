package service

import (
	"fmt"
	"time"

	"github.com/dtroode/credential-server/internal/model"
)

// sessions turns an authenticated user into a token pair.
type sessions struct {
	issuer  model.TokenIssuer
	refresh *RefreshTokenManager
}

// begin stamps a refresh session and the login time onto user.
func (s sessions) begin(user model.User, now time.Time) (model.User, string, error) {
	next, secret, err := s.refresh.Issue(user, now)
	if err != nil {
		return model.User{}, "", err
	}
	next.LastLoginAt = &now
	return next, secret, nil
}

// finish mints the access token for a stored user.
func (s sessions) finish(user model.User, refreshSecret string, now time.Time) (model.Session, error) {
	access, expiresAt, err := s.issuer.IssueAccessToken(user, now)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	return model.Session{
		AccessToken:           access,
		AccessTokenExpiresAt:  expiresAt,
		RefreshToken:          refreshSecret,
		RefreshTokenExpiresAt: user.RefreshTokenExpiry,
		User:                  user.Profile(),
	}, nil
}
