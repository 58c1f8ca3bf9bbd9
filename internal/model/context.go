package model

import (
	"context"
)

type ContextManager interface {
	SetClaimsToContext(ctx context.Context, claims AccessClaims) context.Context
	GetClaimsFromContext(ctx context.Context) (AccessClaims, bool)
}
