package model

import "context"

// EmailSender delivers one-time passcodes.
type EmailSender interface {
	SendOTP(ctx context.Context, to, code, displayName string) error
}

// GoogleIdentity holds the verified claims of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityVerifier validates third-party ID tokens.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

// Limiter decides whether an action keyed by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
