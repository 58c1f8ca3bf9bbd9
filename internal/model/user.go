package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CredentialStore defines persistence operations for user credentials.
//
// Save performs a compare-and-swap on Version and returns ErrStaleWrite when
// the stored row changed since it was read.
type CredentialStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByGoogleID(ctx context.Context, googleID string) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	Save(ctx context.Context, user User) (User, error)
	Ping(ctx context.Context) error
}

// Role is an authorization role.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole matches s against known roles, ignoring case.
func ParseRole(s string) (Role, bool) {
	switch {
	case strings.EqualFold(s, string(RoleUser)):
		return RoleUser, true
	case strings.EqualFold(s, string(RoleAdmin)):
		return RoleAdmin, true
	}
	return "", false
}

// AuthProvider tells which login path owns an account.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "Local"
	ProviderGoogle AuthProvider = "Google"
)

// User represents a stored account with its session and reset state.
// Empty strings stand for absent optional values.
type User struct {
	ID                     uuid.UUID
	Username               string
	Email                  string
	PasswordHash           string
	Role                   Role
	AuthProvider           AuthProvider
	GoogleID               string
	ProfilePicture         string
	RefreshTokenHash       string
	RefreshTokenExpiry     time.Time
	RevokedOn              *time.Time
	PasswordResetOTP       string
	PasswordResetOTPExpiry *time.Time
	PasswordResetAttempts  int
	CreatedAt              time.Time
	UpdatedAt              time.Time
	LastLoginAt            *time.Time
	IsActive               bool
	Version                int64
}

// HasActiveSession reports whether a refresh token is stored and unexpired.
func (u User) HasActiveSession(now time.Time) bool {
	return u.RefreshTokenHash != "" && u.RevokedOn == nil && now.Before(u.RefreshTokenExpiry)
}

// CanUsePassword reports whether the password login path applies.
func (u User) CanUsePassword() bool {
	return u.AuthProvider == ProviderLocal && u.PasswordHash != ""
}

// RevokeSession clears refresh material. It returns false when there was
// nothing to revoke.
func (u *User) RevokeSession(now time.Time) bool {
	if u.RefreshTokenHash == "" && u.RefreshTokenExpiry.IsZero() {
		return false
	}
	u.RefreshTokenHash = ""
	u.RefreshTokenExpiry = time.Time{}
	u.RevokedOn = &now
	return true
}

// ClearPasswordReset drops any pending OTP state.
func (u *User) ClearPasswordReset() {
	u.PasswordResetOTP = ""
	u.PasswordResetOTPExpiry = nil
	u.PasswordResetAttempts = 0
}

// Profile returns the externally visible view of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		AuthProvider:   u.AuthProvider,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		LastLoginAt:    u.LastLoginAt,
		IsActive:       u.IsActive,
	}
}

// Profile is the public projection of a user.
type Profile struct {
	ID             uuid.UUID
	Username       string
	Email          string
	Role           Role
	AuthProvider   AuthProvider
	ProfilePicture string
	CreatedAt      time.Time
	LastLoginAt    *time.Time
	IsActive       bool
}

// Session is the token pair handed to a client after authentication.
type Session struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  Profile
}

// NormalizeEmail canonicalizes an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
