package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/dtroode/credential-server/internal/api/http/context"
	"github.com/dtroode/credential-server/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// withClaims stands in for the authentication middleware.
func withClaims(claims *model.AccessClaims) gin.HandlerFunc {
	manager := httpcontext.NewManager()
	return func(c *gin.Context) {
		if claims != nil {
			c.Request = c.Request.WithContext(manager.SetClaimsToContext(c.Request.Context(), *claims))
		}
		c.Next()
	}
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}

func userClaims(role model.Role) *model.AccessClaims {
	return &model.AccessClaims{
		UserID:   uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
		Role:     role,
	}
}
