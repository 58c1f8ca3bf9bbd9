// Package google verifies Google ID tokens.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	"github.com/dtroode/credential-server/internal/model"
)

var validIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// ErrNotConfigured is returned when no client ID is set.
var ErrNotConfigured = errors.New("google sign-in is not configured")

type payloadValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

var _ model.IdentityVerifier = (*Verifier)(nil)

// Verifier checks signature, audience, issuer and expiry of ID tokens
// against Google's published keys.
type Verifier struct {
	validator payloadValidator
	clientID  string
	timeout   time.Duration
}

func NewVerifier(ctx context.Context, clientID string, timeout time.Duration) (*Verifier, error) {
	validator, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return newVerifier(validator, clientID, timeout), nil
}

func newVerifier(validator payloadValidator, clientID string, timeout time.Duration) *Verifier {
	return &Verifier{
		validator: validator,
		clientID:  clientID,
		timeout:   timeout,
	}
}

func (v *Verifier) Verify(ctx context.Context, idToken string) (model.GoogleIdentity, error) {
	if v.clientID == "" {
		return model.GoogleIdentity{}, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	payload, err := v.validator.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return model.GoogleIdentity{}, fmt.Errorf("failed to validate id token: %w", err)
	}
	if !validIssuers[payload.Issuer] {
		return model.GoogleIdentity{}, fmt.Errorf("unexpected token issuer %q", payload.Issuer)
	}

	return model.GoogleIdentity{
		Subject:       payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		Name:          claimString(payload.Claims, "name"),
		Picture:       claimString(payload.Claims, "picture"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// claimBool accepts both JSON booleans and the "true" string some tokens
// carry.
func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
