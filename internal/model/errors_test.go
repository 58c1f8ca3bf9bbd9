package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := NewError(KindUnauthorized, "invalid credentials")
	wrapped := fmt.Errorf("login: %w", err)

	assert.True(t, errors.Is(wrapped, ErrUnauthorized))
	assert.True(t, errors.Is(wrapped, NewError(KindUnauthorized, "invalid credentials")))
	assert.False(t, errors.Is(wrapped, NewError(KindUnauthorized, "other")))
	assert.False(t, errors.Is(wrapped, ErrForbidden))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(KindInternal, "failed to deliver otp", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to deliver otp: connection refused", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "domain", err: NewError(KindConflict, "email already exists"), want: KindConflict},
		{name: "wrapped", err: fmt.Errorf("x: %w", NewError(KindRateLimited, "slow down")), want: KindRateLimited},
		{name: "plain", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestDuplicateError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &DuplicateError{Field: "email"})

	assert.ErrorIs(t, err, ErrDuplicate)

	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
}
