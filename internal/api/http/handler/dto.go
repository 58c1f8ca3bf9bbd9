package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/model"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type refreshRequest struct {
	UserID       string `json:"userId" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type logoutRequest struct {
	UserID string `json:"userId"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type updateRoleRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// MessageResponse is the body of acknowledgements and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is returned by every sign-in flow.
type TokenResponse struct {
	AccessToken           string     `json:"accessToken"`
	AccessTokenExpiresAt  time.Time  `json:"accessTokenExpiresAt"`
	RefreshToken          string     `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time  `json:"refreshTokenExpiresAt"`
	UserID                uuid.UUID  `json:"userId"`
	Username              string     `json:"username"`
	Email                 string     `json:"email,omitempty"`
	ProfilePicture        string     `json:"profilePicture,omitempty"`
	Role                  model.Role `json:"role"`
	AuthProvider          string     `json:"authProvider"`
}

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	Role           model.Role `json:"role"`
	AuthProvider   string     `json:"authProvider"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	IsActive       bool       `json:"isActive"`
}

func newTokenResponse(session model.Session) TokenResponse {
	return TokenResponse{
		AccessToken:           session.AccessToken,
		AccessTokenExpiresAt:  session.AccessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.RefreshTokenExpiresAt,
		UserID:                session.User.ID,
		Username:              session.User.Username,
		Email:                 session.User.Email,
		ProfilePicture:        session.User.ProfilePicture,
		Role:                  session.User.Role,
		AuthProvider:          string(session.User.AuthProvider),
	}
}

func newProfileResponse(p model.Profile) ProfileResponse {
	return ProfileResponse{
		ID:             p.ID,
		Username:       p.Username,
		Email:          p.Email,
		Role:           p.Role,
		AuthProvider:   string(p.AuthProvider),
		ProfilePicture: p.ProfilePicture,
		CreatedAt:      p.CreatedAt,
		LastLoginAt:    p.LastLoginAt,
		IsActive:       p.IsActive,
	}
}
