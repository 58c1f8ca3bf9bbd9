// Package password hashes secrets with bcrypt.
package password

import (
	"errors"
	"fmt"

	"github.com/dtroode/credential-server/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the production work factor.
const DefaultCost = 12

// Bcrypt implements PasswordHasher.
type Bcrypt struct {
	cost int
}

var _ model.PasswordHasher = (*Bcrypt)(nil)

// NewBcrypt creates a hasher with the given work factor. Out of range costs
// fall back to DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash returns a salted digest embedding the cost and salt. Secrets over
// 72 bytes are rejected rather than truncated.
func (b *Bcrypt) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.WrapError(model.KindInvalidArgument, "password must be at most 72 bytes", err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. A malformed digest never
// matches.
func (b *Bcrypt) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
