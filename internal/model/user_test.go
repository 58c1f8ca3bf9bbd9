package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_HasActiveSession(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	revokedOn := now.Add(-time.Minute)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{name: "active", user: User{RefreshTokenHash: "h", RefreshTokenExpiry: now.Add(time.Hour)}, want: true},
		{name: "no hash", user: User{RefreshTokenExpiry: now.Add(time.Hour)}, want: false},
		{name: "expired at boundary", user: User{RefreshTokenHash: "h", RefreshTokenExpiry: now}, want: false},
		{name: "revoked", user: User{RefreshTokenHash: "h", RefreshTokenExpiry: now.Add(time.Hour), RevokedOn: &revokedOn}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.HasActiveSession(now))
		})
	}
}

func TestUser_RevokeSession(t *testing.T) {
	now := time.Now()
	user := User{RefreshTokenHash: "h", RefreshTokenExpiry: now.Add(time.Hour)}

	assert.True(t, user.RevokeSession(now))
	assert.Empty(t, user.RefreshTokenHash)
	assert.True(t, user.RefreshTokenExpiry.IsZero())
	assert.NotNil(t, user.RevokedOn)

	assert.False(t, user.RevokeSession(now.Add(time.Second)))
	assert.Equal(t, now, *user.RevokedOn)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
