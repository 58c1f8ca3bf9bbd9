package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

const (
	// OTPTTL is how long an issued reset code stays valid.
	OTPTTL = 10 * time.Minute
	// MaxOTPAttempts is the number of wrong guesses allowed per code.
	MaxOTPAttempts = 5

	otpDigits = 6
)

// PasswordResetFlow issues, checks and redeems email one-time passcodes.
type PasswordResetFlow struct {
	store   model.CredentialStore
	hasher  model.PasswordHasher
	sender  model.EmailSender
	limiter model.Limiter
	logger  *logger.Logger
	random  io.Reader
}

func NewPasswordResetFlow(
	store model.CredentialStore,
	hasher model.PasswordHasher,
	sender model.EmailSender,
	limiter model.Limiter,
	logger *logger.Logger,
) *PasswordResetFlow {
	return &PasswordResetFlow{
		store:   store,
		hasher:  hasher,
		sender:  sender,
		limiter: limiter,
		logger:  logger,
		random:  rand.Reader,
	}
}

// RequestOTP issues a new code for an active local account and emails it.
// Unknown, deactivated and OAuth-only addresses get the same silent
// success. A delivery failure leaves the code stored.
func (f *PasswordResetFlow) RequestOTP(ctx context.Context, email string, now time.Time) error {
	email = model.NormalizeEmail(email)
	if email == "" {
		return model.NewError(model.KindInvalidArgument, "email is required")
	}

	if f.limiter != nil {
		allowed, err := f.limiter.Allow(ctx, "forgot-password:"+email)
		if err != nil {
			f.logger.Warn("Password reset: rate limiter unavailable",
				"error", err.Error())
		} else if !allowed {
			f.logger.Debug("Password reset: request throttled",
				"email", email)
			return nil
		}
	}

	code, err := f.newCode()
	if err != nil {
		return err
	}

	var skipped bool
	user, err := update(ctx, f.store,
		func(ctx context.Context) (model.User, error) {
			return f.store.GetByEmail(ctx, email)
		},
		func(user model.User) (model.User, error) {
			if !user.IsActive || !user.CanUsePassword() {
				skipped = true
				return user, errUnchanged
			}
			expiry := now.Add(OTPTTL)
			user.PasswordResetOTP = code
			user.PasswordResetOTPExpiry = &expiry
			user.PasswordResetAttempts = 0
			user.UpdatedAt = now
			return user, nil
		},
	)
	if errors.Is(err, model.ErrNotFound) || (err == nil && skipped) {
		f.logger.Debug("Password reset: no eligible account",
			"email", email)
		return nil
	}
	if err != nil {
		return err
	}

	if err := f.sender.SendOTP(ctx, email, code, user.Username); err != nil {
		f.logger.Error("Password reset: failed to deliver otp",
			"user_id", user.ID,
			"error", err.Error())
		return model.WrapError(model.KindInternal, "failed to send otp, please try again", err)
	}

	f.logger.Info("Password reset: otp issued",
		"user_id", user.ID)

	return nil
}

// VerifyOTP checks candidate without consuming the code. Wrong guesses are
// counted. Expired or exhausted codes are cleared.
func (f *PasswordResetFlow) VerifyOTP(ctx context.Context, email, candidate string, now time.Time) error {
	email = model.NormalizeEmail(email)

	_, err := update(ctx, f.store, f.loader(email),
		func(user model.User) (model.User, error) {
			return checkOTP(user, candidate, now)
		},
	)
	return err
}

// ResetPassword redeems candidate, replaces the password and ends any
// refresh session.
func (f *PasswordResetFlow) ResetPassword(ctx context.Context, email, candidate, newPassword string, now time.Time) error {
	if len(newPassword) < minPasswordLength {
		return model.NewError(model.KindInvalidArgument, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	email = model.NormalizeEmail(email)

	var digest string
	user, err := update(ctx, f.store, f.loader(email),
		func(user model.User) (model.User, error) {
			next, err := checkOTP(user, candidate, now)
			if errors.Is(err, errUnchanged) {
				next = user
			} else if err != nil {
				return next, err
			}

			if digest == "" {
				hashed, err := f.hasher.Hash(newPassword)
				if err != nil {
					return model.User{}, model.WrapError(model.KindInvalidArgument, "password cannot be used", err)
				}
				digest = hashed
			}
			next.PasswordHash = digest
			next.ClearPasswordReset()
			next.RevokeSession(now)
			next.UpdatedAt = now
			return next, nil
		},
	)
	if err != nil {
		return err
	}

	f.logger.Info("Password reset: password replaced",
		"user_id", user.ID)

	return nil
}

func (f *PasswordResetFlow) loader(email string) func(ctx context.Context) (model.User, error) {
	return func(ctx context.Context) (model.User, error) {
		user, err := f.store.GetByEmail(ctx, email)
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.NewError(model.KindInvalidOperation, "no password reset is pending")
		}
		return user, err
	}
}

// checkOTP validates candidate against the pending code. On success it
// returns errUnchanged. Rejections that alter state come wrapped in
// failAfterSave.
func checkOTP(user model.User, candidate string, now time.Time) (model.User, error) {
	if !user.IsActive || user.PasswordResetOTP == "" || user.PasswordResetOTPExpiry == nil {
		return model.User{}, model.NewError(model.KindInvalidOperation, "no password reset is pending")
	}

	if !now.Before(*user.PasswordResetOTPExpiry) {
		user.ClearPasswordReset()
		user.UpdatedAt = now
		return user, &failAfterSave{err: model.NewError(model.KindUnauthorized, "otp has expired")}
	}

	if user.PasswordResetAttempts >= MaxOTPAttempts {
		user.ClearPasswordReset()
		user.UpdatedAt = now
		return user, &failAfterSave{err: model.NewError(model.KindRateLimited, "too many attempts, request a new otp")}
	}

	if subtle.ConstantTimeCompare([]byte(candidate), []byte(user.PasswordResetOTP)) != 1 {
		user.PasswordResetAttempts++
		user.UpdatedAt = now
		remaining := MaxOTPAttempts - user.PasswordResetAttempts
		return user, &failAfterSave{err: model.NewError(model.KindUnauthorized,
			fmt.Sprintf("invalid otp, %d attempts remaining", remaining))}
	}

	return user, errUnchanged
}

func (f *PasswordResetFlow) newCode() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(f.random, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
