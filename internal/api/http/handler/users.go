package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// UserService defines the admin account operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.Profile, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) (model.Profile, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// Users handles admin endpoints.
type Users struct {
	userService UserService
	logger      *logger.Logger
}

// NewUsers creates a new Users handler.
func NewUsers(userService UserService, logger *logger.Logger) *Users {
	return &Users{userService: userService, logger: logger}
}

// List returns every account, newest first.
func (h *Users) List(c *gin.Context) {
	profiles, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, "Users handler: list users", err, nil)
		return
	}

	resp := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, newProfileResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Users) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id is not a valid id")
		return
	}

	profile, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.logger, "Users handler: get user", err, nil)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(profile))
}

func (h *Users) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId and role are required")
		return
	}
	id, err := uuid.Parse(req.UserID)
	if err != nil {
		badRequest(c, "userId is not a valid id")
		return
	}

	profile, err := h.userService.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		handleError(c, h.logger, "Users handler: update role", err, nil)
		return
	}

	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// Deactivate disables an account and ends its session.
func (h *Users) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id is not a valid id")
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), id); err != nil {
		handleError(c, h.logger, "Users handler: deactivate user", err, nil)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User deactivated successfully"})
}
