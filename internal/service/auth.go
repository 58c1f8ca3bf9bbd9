package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

const minPasswordLength = 6

var tracer = otel.Tracer("github.com/dtroode/credential-server/internal/service")

// Auth exposes every authentication use case.
type Auth struct {
	store     model.CredentialStore
	hasher    model.PasswordHasher
	issuer    model.TokenIssuer
	refresh   *RefreshTokenManager
	google    *OAuthIdentityLinker
	reset     *PasswordResetFlow
	sessions  sessions
	logger    *logger.Logger
	clock     func() time.Time
	dummyHash string
}

func NewAuth(
	store model.CredentialStore,
	hasher model.PasswordHasher,
	issuer model.TokenIssuer,
	refresh *RefreshTokenManager,
	google *OAuthIdentityLinker,
	reset *PasswordResetFlow,
	logger *logger.Logger,
) (*Auth, error) {
	// Compared against on unknown emails so both login failures cost the same.
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare login hasher: %w", err)
	}

	return &Auth{
		store:     store,
		hasher:    hasher,
		issuer:    issuer,
		refresh:   refresh,
		google:    google,
		reset:     reset,
		sessions:  sessions{issuer: issuer, refresh: refresh},
		logger:    logger,
		clock:     time.Now,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a local account and signs it in.
func (a *Auth) Register(ctx context.Context, email, password string) (session model.Session, err error) {
	ctx, span := tracer.Start(ctx, "Auth.Register")
	defer func() { endSpan(span, err) }()

	email = model.NormalizeEmail(email)
	if email == "" {
		return model.Session{}, model.NewError(model.KindInvalidArgument, "email is required")
	}
	if err := validatePassword(password); err != nil {
		return model.Session{}, err
	}

	_, err = a.store.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: email already registered",
			"email", email)
		return model.Session{}, model.NewError(model.KindConflict, "email already exists")
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	digest, err := a.hasher.Hash(password)
	if err != nil {
		return model.Session{}, model.WrapError(model.KindInvalidArgument, "password cannot be used", err)
	}

	now := a.clock()
	user, secret, err := a.sessions.begin(model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: digest,
		Role:         model.RoleUser,
		AuthProvider: model.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
		IsActive:     true,
	}, now)
	if err != nil {
		return model.Session{}, err
	}

	created, err := createWithUniqueUsername(ctx, a.store, user)
	if isDuplicateField(err, "email") {
		return model.Session{}, model.NewError(model.KindConflict, "email already exists")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registered",
		"user_id", created.ID,
		"username", created.Username)

	return a.sessions.finish(created, secret, now)
}

// Login signs in a local account with email and password.
func (a *Auth) Login(ctx context.Context, email, password string) (session model.Session, err error) {
	ctx, span := tracer.Start(ctx, "Auth.Login")
	defer func() { endSpan(span, err) }()

	email = model.NormalizeEmail(email)
	invalid := model.NewError(model.KindUnauthorized, "invalid credentials")

	existing, err := a.store.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.hasher.Verify(password, a.dummyHash)
		return model.Session{}, invalid
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if !existing.IsActive || !existing.CanUsePassword() {
		a.hasher.Verify(password, a.dummyHash)
		return model.Session{}, invalid
	}
	if !a.hasher.Verify(password, existing.PasswordHash) {
		a.logger.Info("Auth service: wrong password",
			"user_id", existing.ID)
		return model.Session{}, invalid
	}

	now := a.clock()
	var secret string
	user, err := update(ctx, a.store,
		func(ctx context.Context) (model.User, error) {
			return a.store.GetByID(ctx, existing.ID)
		},
		func(user model.User) (model.User, error) {
			if !user.IsActive || user.PasswordHash != existing.PasswordHash {
				return model.User{}, invalid
			}
			next, issued, err := a.sessions.begin(user, now)
			if err != nil {
				return model.User{}, err
			}
			secret = issued
			return next, nil
		},
	)
	if err != nil {
		return model.Session{}, err
	}

	a.logger.Info("Auth service: user logged in",
		"user_id", user.ID)

	return a.sessions.finish(user, secret, now)
}

// GoogleSignIn signs in with a Google ID token.
func (a *Auth) GoogleSignIn(ctx context.Context, idToken string) (session model.Session, err error) {
	ctx, span := tracer.Start(ctx, "Auth.GoogleSignIn")
	defer func() { endSpan(span, err) }()

	return a.google.Authenticate(ctx, idToken, a.clock())
}

// Refresh rotates the refresh token and issues a new access token.
func (a *Auth) Refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (session model.Session, err error) {
	ctx, span := tracer.Start(ctx, "Auth.Refresh", trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer func() { endSpan(span, err) }()

	now := a.clock()
	user, secret, err := a.refresh.Rotate(ctx, userID, refreshToken, now)
	if err != nil {
		return model.Session{}, err
	}

	return a.sessions.finish(user, secret, now)
}

// Logout revokes the user's refresh session.
func (a *Auth) Logout(ctx context.Context, userID uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "Auth.Logout", trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer func() { endSpan(span, err) }()

	if err := a.refresh.Revoke(ctx, userID, a.clock()); err != nil {
		return err
	}

	a.logger.Info("Auth service: user logged out",
		"user_id", userID)

	return nil
}

// Authenticate validates an access token and confirms that its account is
// still active.
func (a *Auth) Authenticate(ctx context.Context, accessToken string) (model.AccessClaims, error) {
	claims, err := a.issuer.ParseAccessToken(accessToken, a.clock())
	if err != nil {
		return model.AccessClaims{}, err
	}

	user, err := a.store.GetByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return model.AccessClaims{}, model.NewError(model.KindUnauthorized, "account no longer exists")
	}
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	if !user.IsActive {
		return model.AccessClaims{}, model.NewError(model.KindUnauthorized, "account is deactivated")
	}

	claims.Role = user.Role
	return claims, nil
}

// Me returns the caller's profile.
func (a *Auth) Me(ctx context.Context, userID uuid.UUID) (model.Profile, error) {
	user, err := a.store.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Profile{}, model.NewError(model.KindNotFound, "user not found")
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user.Profile(), nil
}

// ChangePassword replaces a local account's password after checking the
// current one and ends the refresh session.
func (a *Auth) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) (err error) {
	ctx, span := tracer.Start(ctx, "Auth.ChangePassword", trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer func() { endSpan(span, err) }()

	if err := validatePassword(next); err != nil {
		return err
	}

	var digest string
	now := a.clock()
	_, err = update(ctx, a.store,
		func(ctx context.Context) (model.User, error) {
			user, err := a.store.GetByID(ctx, userID)
			if errors.Is(err, model.ErrNotFound) {
				return model.User{}, model.NewError(model.KindNotFound, "user not found")
			}
			return user, err
		},
		func(user model.User) (model.User, error) {
			if !user.CanUsePassword() {
				return model.User{}, model.NewError(model.KindInvalidOperation, "cannot change password for oauth users")
			}
			if !a.hasher.Verify(current, user.PasswordHash) {
				return model.User{}, model.NewError(model.KindUnauthorized, "current password is incorrect")
			}
			if digest == "" {
				hashed, err := a.hasher.Hash(next)
				if err != nil {
					return model.User{}, model.WrapError(model.KindInvalidArgument, "password cannot be used", err)
				}
				digest = hashed
			}
			user.PasswordHash = digest
			user.RevokeSession(now)
			user.UpdatedAt = now
			return user, nil
		},
	)
	if err != nil {
		return err
	}

	a.logger.Info("Auth service: password changed",
		"user_id", userID)

	return nil
}

// ForgotPassword starts a password reset.
func (a *Auth) ForgotPassword(ctx context.Context, email string) (err error) {
	ctx, span := tracer.Start(ctx, "Auth.ForgotPassword")
	defer func() { endSpan(span, err) }()

	return a.reset.RequestOTP(ctx, email, a.clock())
}

// VerifyOTP checks a reset code without consuming it.
func (a *Auth) VerifyOTP(ctx context.Context, email, otp string) (err error) {
	ctx, span := tracer.Start(ctx, "Auth.VerifyOTP")
	defer func() { endSpan(span, err) }()

	return a.reset.VerifyOTP(ctx, email, otp, a.clock())
}

// ResetPassword redeems a reset code.
func (a *Auth) ResetPassword(ctx context.Context, email, otp, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "Auth.ResetPassword")
	defer func() { endSpan(span, err) }()

	return a.reset.ResetPassword(ctx, email, otp, newPassword, a.clock())
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return model.NewError(model.KindInvalidArgument, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil && model.KindOf(err) == model.KindInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
