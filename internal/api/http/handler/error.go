package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// statusOverrides replaces the default status of selected error kinds on a
// single route.
type statusOverrides map[model.Kind]int

var (
	// otpRoutes report every rejected code as a bad request.
	otpRoutes = statusOverrides{
		model.KindUnauthorized: http.StatusBadRequest,
		model.KindRateLimited:  http.StatusBadRequest,
	}
	logoutRoute = statusOverrides{
		model.KindNotFound: http.StatusBadRequest,
	}
	forgotPasswordRoute = statusOverrides{
		model.KindInternal: http.StatusServiceUnavailable,
	}
)

func statusFor(kind model.Kind, overrides statusOverrides) int {
	if status, ok := overrides[kind]; ok {
		return status
	}
	switch kind {
	case model.KindInvalidArgument, model.KindConflict, model.KindInvalidOperation:
		return http.StatusBadRequest
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-safe part of err. Causes never reach the
// client.
func messageFor(err error) string {
	var domainErr *model.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return "internal server error"
}

func handleError(c *gin.Context, log *logger.Logger, operation string, err error, overrides statusOverrides) {
	kind := model.KindOf(err)
	status := statusFor(kind, overrides)

	if status >= http.StatusInternalServerError {
		log.Error(operation+" failed",
			"kind", kind.String(),
			"error", err.Error())
	} else {
		log.Info(operation+" rejected",
			"kind", kind.String(),
			"error", err.Error())
	}

	c.JSON(status, MessageResponse{Message: messageFor(err)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, MessageResponse{Message: message})
}
