package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenIssuer mints and validates signed access tokens.
type TokenIssuer interface {
	IssueAccessToken(user User, now time.Time) (token string, expiresAt time.Time, err error)
	ParseAccessToken(token string, now time.Time) (AccessClaims, error)
}

// AccessClaims are the identity claims carried by an access token.
type AccessClaims struct {
	UserID       uuid.UUID
	Username     string
	Email        string
	Role         Role
	AuthProvider AuthProvider
	TokenID      string
	ExpiresAt    time.Time
}

// PasswordHasher produces and checks salted one-way digests.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}
