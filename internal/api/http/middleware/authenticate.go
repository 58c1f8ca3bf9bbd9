package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// Authenticator resolves access tokens into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.AccessClaims, error)
}

// Authenticate validates bearer tokens and injects claims into the request
// context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{authenticator: authenticator, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid access token.
func (m *Authenticate) Handle(c *gin.Context) {
	tokenString := bearerToken(c.GetHeader("Authorization"))
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing authorization token"})
		return
	}

	claims, err := m.authenticator.Authenticate(c.Request.Context(), tokenString)
	if err != nil {
		if model.KindOf(err) != model.KindUnauthorized {
			m.logger.Error("Authenticate middleware: failed to authenticate request",
				"path", c.Request.URL.Path,
				"error", err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
			return
		}
		m.logger.Debug("Authenticate middleware: rejected token",
			"path", c.Request.URL.Path,
			"error", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization token"})
		return
	}

	c.Request = c.Request.WithContext(m.contextManager.SetClaimsToContext(c.Request.Context(), claims))
	c.Next()
}

// RequireRole rejects authenticated callers that lack role.
func (m *Authenticate) RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.contextManager.GetClaimsFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing authorization token"})
			return
		}
		if claims.Role != role {
			m.logger.Info("Authenticate middleware: role check failed",
				"user_id", claims.UserID,
				"required_role", role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
