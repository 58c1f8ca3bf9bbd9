package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtroode/credential-server/internal/model"
)

const (
	maxWriteAttempts    = 3
	maxUsernameAttempts = 100
)

// errUnchanged tells update that the snapshot needs no write.
var errUnchanged = errors.New("unchanged")

// failAfterSave marks a rejection whose state change must still be written,
// such as a counted failed OTP attempt.
type failAfterSave struct {
	err error
}

func (f *failAfterSave) Error() string {
	return f.err.Error()
}

// update loads a snapshot, applies change and writes it back with a version
// check. A concurrent write makes it reload and reapply change, so every
// validation inside change runs against the latest state.
func update(
	ctx context.Context,
	store model.CredentialStore,
	load func(ctx context.Context) (model.User, error),
	change func(user model.User) (model.User, error),
) (model.User, error) {
	for attempt := 1; ; attempt++ {
		current, err := load(ctx)
		if err != nil {
			return model.User{}, err
		}

		next, changeErr := change(current)
		var deferred *failAfterSave
		switch {
		case errors.Is(changeErr, errUnchanged):
			return current, nil
		case changeErr != nil && !errors.As(changeErr, &deferred):
			return model.User{}, changeErr
		}

		saved, err := store.Save(ctx, next)
		if errors.Is(err, model.ErrStaleWrite) {
			if attempt < maxWriteAttempts {
				continue
			}
			return model.User{}, model.WrapError(model.KindInternal, "account was modified concurrently", err)
		}
		if err != nil {
			return model.User{}, fmt.Errorf("failed to save user: %w", err)
		}

		if deferred != nil {
			return saved, deferred.err
		}
		return saved, nil
	}
}

// createWithUniqueUsername inserts user under the email local-part, adding
// a numeric suffix until the username is free.
func createWithUniqueUsername(ctx context.Context, store model.CredentialStore, user model.User) (model.User, error) {
	base := usernameBase(user.Email)

	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}

		_, err := store.GetByUsername(ctx, candidate)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrNotFound) {
			return model.User{}, fmt.Errorf("failed to check username: %w", err)
		}

		user.Username = candidate
		created, err := store.Create(ctx, user)
		var dup *model.DuplicateError
		if errors.As(err, &dup) && dup.Field == "username" {
			continue
		}
		if err != nil {
			return model.User{}, err
		}
		return created, nil
	}

	return model.User{}, model.NewError(model.KindConflict, "could not allocate a unique username")
}

func usernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return "user"
	}
	return local
}

func isDuplicateField(err error, field string) bool {
	var dup *model.DuplicateError
	return errors.As(err, &dup) && dup.Field == field
}
