package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// AuthService defines the sign-in, session and password operations.
type AuthService interface {
	Register(ctx context.Context, email, password string) (model.Session, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
	GoogleSignIn(ctx context.Context, idToken string) (model.Session, error)
	Refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (model.Session, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (model.Profile, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates a local account and signs it in.
func (h *Auth) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	session, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, h.logger, "Auth handler: registration", err, nil)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(session))
}

// Login signs in with email and password.
func (h *Auth) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, h.logger, "Auth handler: login", err, nil)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(session))
}

// Google signs in with a Google ID token.
func (h *Auth) Google(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "idToken is required")
		return
	}

	session, err := h.authService.GoogleSignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		handleError(c, h.logger, "Auth handler: google sign-in", err, nil)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(session))
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *Auth) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and refreshToken are required")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		badRequest(c, "userId is not a valid id")
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), userID, req.RefreshToken)
	if err != nil {
		handleError(c, h.logger, "Auth handler: token refresh", err, nil)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(session))
}

// Logout revokes the caller's refresh session. Admins may name another
// user.
func (h *Auth) Logout(c *gin.Context) {
	claims, ok := h.contextManager.GetClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "invalid authorization token"})
		return
	}

	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}

	target := claims.UserID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			badRequest(c, "userId is not a valid id")
			return
		}
		target = id
	}
	if target != claims.UserID && claims.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, MessageResponse{Message: "cannot log out another user"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), target); err != nil {
		handleError(c, h.logger, "Auth handler: logout", err, logoutRoute)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me returns the caller's profile.
func (h *Auth) Me(c *gin.Context) {
	claims, ok := h.contextManager.GetClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "invalid authorization token"})
		return
	}

	profile, err := h.authService.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		handleError(c, h.logger, "Auth handler: get profile", err, nil)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// ChangePassword replaces the caller's password.
func (h *Auth) ChangePassword(c *gin.Context) {
	claims, ok := h.contextManager.GetClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "invalid authorization token"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "currentPassword and newPassword are required")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		handleError(c, h.logger, "Auth handler: change password", err, nil)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

// ForgotPassword emails a reset code. The response does not reveal whether
// the account exists.
func (h *Auth) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email is required")
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, h.logger, "Auth handler: forgot password", err, forgotPasswordRoute)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "If the email exists, an OTP has been sent"})
}

// VerifyOTP checks a reset code without consuming it.
func (h *Auth) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and otp are required")
		return
	}

	if err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		handleError(c, h.logger, "Auth handler: verify otp", err, otpRoutes)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "OTP verified successfully"})
}

// ResetPassword redeems a reset code and sets a new password.
func (h *Auth) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email, otp and newPassword are required")
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		handleError(c, h.logger, "Auth handler: reset password", err, otpRoutes)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset successfully. Please login with your new password."})
}
