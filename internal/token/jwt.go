package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/credential-server/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretKeyLength is the shortest accepted HMAC signing key in bytes.
const MinSecretKeyLength = 32

// ErrWeakSecret is returned when the signing key is too short.
var ErrWeakSecret = errors.New("jwt secret key must be at least 32 bytes")

// Claims represents access token claims.
type Claims struct {
	jwt.RegisteredClaims
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	Role         model.Role         `json:"role"`
	AuthProvider model.AuthProvider `json:"auth_provider"`
}

// JWT implements TokenIssuer backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	issuer    string
	audience  string
	ttl       time.Duration
}

var _ model.TokenIssuer = (*JWT)(nil)

// NewJWT creates a new JWT token issuer.
func NewJWT(secretKey, issuer, audience string, ttl time.Duration) (*JWT, error) {
	if len(secretKey) < MinSecretKeyLength {
		return nil, ErrWeakSecret
	}

	return &JWT{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
	}, nil
}

// IssueAccessToken signs an access token for user valid from now for the
// configured TTL.
func (j *JWT) IssueAccessToken(user model.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(j.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		AuthProvider: user.AuthProvider,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ParseAccessToken validates signature, issuer, audience and expiry as of
// now with zero clock skew.
func (j *JWT) ParseAccessToken(tokenString string, now time.Time) (model.AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		return model.AccessClaims{}, model.WrapError(model.KindUnauthorized, "invalid access token", err)
	}
	if !token.Valid {
		return model.AccessClaims{}, model.NewError(model.KindUnauthorized, "invalid access token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.AccessClaims{}, model.WrapError(model.KindUnauthorized, "invalid access token subject", err)
	}

	return model.AccessClaims{
		UserID:       userID,
		Username:     claims.Username,
		Email:        claims.Email,
		Role:         claims.Role,
		AuthProvider: claims.AuthProvider,
		TokenID:      claims.ID,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
