package context

import (
	"context"

	"github.com/dtroode/credential-server/internal/model"
)

type claimsKey struct{}

// Manager stores authenticated access claims on request contexts.
type Manager struct{}

// NewManager creates a new context manager.
func NewManager() *Manager {
	return &Manager{}
}

// SetClaimsToContext returns a copy of ctx carrying claims.
func (m *Manager) SetClaimsToContext(ctx context.Context, claims model.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaimsFromContext returns the claims set by the authentication
// middleware.
func (m *Manager) GetClaimsFromContext(ctx context.Context) (model.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(model.AccessClaims)
	return claims, ok
}
