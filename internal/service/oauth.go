package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// errRetryCreate makes update reload after losing an insert race.
var errRetryCreate = errors.New("identity claimed concurrently")

// OAuthIdentityLinker signs users in with a Google ID token, linking the
// identity to an existing account or creating a new one.
type OAuthIdentityLinker struct {
	verifier model.IdentityVerifier
	store    model.CredentialStore
	sessions sessions
	avatars  *AvatarMirror
	logger   *logger.Logger
}

func NewOAuthIdentityLinker(
	verifier model.IdentityVerifier,
	store model.CredentialStore,
	issuer model.TokenIssuer,
	refresh *RefreshTokenManager,
	avatars *AvatarMirror,
	logger *logger.Logger,
) *OAuthIdentityLinker {
	return &OAuthIdentityLinker{
		verifier: verifier,
		store:    store,
		sessions: sessions{issuer: issuer, refresh: refresh},
		avatars:  avatars,
		logger:   logger,
	}
}

// Authenticate verifies idToken and returns a new session for the linked
// account.
func (l *OAuthIdentityLinker) Authenticate(ctx context.Context, idToken string, now time.Time) (model.Session, error) {
	if idToken == "" {
		return model.Session{}, model.NewError(model.KindInvalidArgument, "id token is required")
	}

	identity, err := l.verifier.Verify(ctx, idToken)
	if err != nil {
		l.logger.Info("OAuth linker: google token rejected",
			"error", err.Error())
		return model.Session{}, model.WrapError(model.KindUnauthorized, "invalid google token", err)
	}
	if identity.Subject == "" {
		return model.Session{}, model.NewError(model.KindUnauthorized, "invalid google token")
	}

	email := model.NormalizeEmail(identity.Email)
	picture := l.lazyPicture(ctx, identity)

	var (
		user   model.User
		secret string
	)
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		user, secret, err = l.signIn(ctx, identity, email, picture, now)
		if !errors.Is(err, errRetryCreate) {
			break
		}
	}
	if errors.Is(err, errRetryCreate) {
		return model.Session{}, model.WrapError(model.KindInternal, "account was modified concurrently", err)
	}
	if err != nil {
		return model.Session{}, err
	}

	return l.sessions.finish(user, secret, now)
}

func (l *OAuthIdentityLinker) signIn(
	ctx context.Context,
	identity model.GoogleIdentity,
	email string,
	picture func() string,
	now time.Time,
) (model.User, string, error) {
	existing, err := l.find(ctx, identity.Subject, email)
	if errors.Is(err, model.ErrNotFound) {
		return l.create(ctx, identity, email, picture, now)
	}
	if err != nil {
		return model.User{}, "", err
	}

	var secret string
	user, err := update(ctx, l.store,
		func(ctx context.Context) (model.User, error) {
			return l.store.GetByID(ctx, existing.ID)
		},
		func(user model.User) (model.User, error) {
			if !user.IsActive {
				return model.User{}, model.NewError(model.KindUnauthorized, "account is deactivated")
			}
			if user.GoogleID != "" && user.GoogleID != identity.Subject {
				return model.User{}, model.NewError(model.KindUnauthorized, "email is linked to a different google account")
			}

			if user.GoogleID == "" {
				l.logger.Info("OAuth linker: linking google identity to existing account",
					"user_id", user.ID)
			}
			user.GoogleID = identity.Subject
			user.AuthProvider = model.ProviderGoogle
			if p := picture(); p != "" {
				user.ProfilePicture = p
			}
			if user.Email == "" && email != "" {
				user.Email = email
			}

			next, issued, err := l.sessions.begin(user, now)
			if err != nil {
				return model.User{}, err
			}
			secret = issued
			return next, nil
		},
	)
	if isDuplicateField(err, "email") || isDuplicateField(err, "google_id") {
		return model.User{}, "", errRetryCreate
	}
	if err != nil {
		return model.User{}, "", err
	}

	return user, secret, nil
}

func (l *OAuthIdentityLinker) find(ctx context.Context, subject, email string) (model.User, error) {
	user, err := l.store.GetByGoogleID(ctx, subject)
	if err == nil || !errors.Is(err, model.ErrNotFound) || email == "" {
		return user, err
	}
	return l.store.GetByEmail(ctx, email)
}

func (l *OAuthIdentityLinker) create(
	ctx context.Context,
	identity model.GoogleIdentity,
	email string,
	picture func() string,
	now time.Time,
) (model.User, string, error) {
	if email == "" || !identity.EmailVerified {
		return model.User{}, "", model.NewError(model.KindUnauthorized, "google account email is not verified")
	}

	user := model.User{
		ID:             uuid.New(),
		Email:          email,
		Role:           model.RoleUser,
		AuthProvider:   model.ProviderGoogle,
		GoogleID:       identity.Subject,
		ProfilePicture: picture(),
		CreatedAt:      now,
		UpdatedAt:      now,
		IsActive:       true,
	}

	user, secret, err := l.sessions.begin(user, now)
	if err != nil {
		return model.User{}, "", err
	}

	created, err := createWithUniqueUsername(ctx, l.store, user)
	if isDuplicateField(err, "email") || isDuplicateField(err, "google_id") {
		return model.User{}, "", errRetryCreate
	}
	if err != nil {
		return model.User{}, "", err
	}

	l.logger.Info("OAuth linker: created account from google identity",
		"user_id", created.ID,
		"username", created.Username)

	return created, secret, nil
}

// lazyPicture mirrors at most once, and only when an account has been
// accepted for sign-in.
func (l *OAuthIdentityLinker) lazyPicture(ctx context.Context, identity model.GoogleIdentity) func() string {
	var (
		picture string
		done    bool
	)
	return func() string {
		if !done {
			picture = l.mirrorPicture(ctx, identity)
			done = true
		}
		return picture
	}
}

// mirrorPicture falls back to the provider URL when mirroring is disabled
// or fails.
func (l *OAuthIdentityLinker) mirrorPicture(ctx context.Context, identity model.GoogleIdentity) string {
	if l.avatars == nil || identity.Picture == "" {
		return identity.Picture
	}

	mirrored, err := l.avatars.Mirror(ctx, identity.Subject, identity.Picture)
	if err != nil {
		l.logger.Warn("OAuth linker: failed to mirror profile picture",
			"error", err.Error())
		return identity.Picture
	}
	return mirrored
}
