package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/credential-server/internal/model"
)

var _ model.CredentialStore = (*UserRepository)(nil)

const uniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, role, auth_provider, google_id, profile_picture,
	refresh_token_hash, refresh_token_expiry, revoked_on,
	password_reset_otp, password_reset_otp_expiry, password_reset_attempts,
	created_at, updated_at, last_login_at, is_active, version`

var constraintFields = map[string]string{
	"users_email_key":     "email",
	"users_username_key":  "username",
	"users_google_id_key": "google_id",
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{
		db: conn.DB,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	return r.getBy(ctx, "google_id", googleID)
}

// getBy looks a user up by a unique column. column is never user input.
func (r *UserRepository) getBy(ctx context.Context, column string, value any) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, nullString(user.Email), nullString(user.PasswordHash),
		string(user.Role), string(user.AuthProvider), nullString(user.GoogleID), nullString(user.ProfilePicture),
		nullString(user.RefreshTokenHash), nullTime(user.RefreshTokenExpiry), user.RevokedOn,
		nullString(user.PasswordResetOTP), user.PasswordResetOTPExpiry, user.PasswordResetAttempts,
		user.CreatedAt, user.UpdatedAt, user.LastLoginAt, user.IsActive,
	))
	if err != nil {
		if dup := duplicateFrom(err); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

// Save writes user back if its version still matches the stored row and
// bumps the version.
func (r *UserRepository) Save(ctx context.Context, user model.User) (model.User, error) {
	query := `UPDATE users SET
				username = $3, email = $4, password_hash = $5, role = $6, auth_provider = $7,
				google_id = $8, profile_picture = $9, refresh_token_hash = $10,
				refresh_token_expiry = $11, revoked_on = $12, password_reset_otp = $13,
				password_reset_otp_expiry = $14, password_reset_attempts = $15,
				last_login_at = $16, is_active = $17, updated_at = $18, version = version + 1
			  WHERE id = $1 AND version = $2
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Version,
		user.Username, nullString(user.Email), nullString(user.PasswordHash),
		string(user.Role), string(user.AuthProvider), nullString(user.GoogleID), nullString(user.ProfilePicture),
		nullString(user.RefreshTokenHash), nullTime(user.RefreshTokenExpiry), user.RevokedOn,
		nullString(user.PasswordResetOTP), user.PasswordResetOTPExpiry, user.PasswordResetAttempts,
		user.LastLoginAt, user.IsActive, user.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, model.ErrStaleWrite
		}
		if dup := duplicateFrom(err); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		user                                          model.User
		role, provider                                string
		email, passwordHash, googleID, picture        sql.NullString
		refreshHash, otp                              sql.NullString
		refreshExpiry, revokedOn, otpExpiry, lastSeen sql.NullTime
	)

	err := row.Scan(
		&user.ID, &user.Username, &email, &passwordHash, &role, &provider, &googleID, &picture,
		&refreshHash, &refreshExpiry, &revokedOn,
		&otp, &otpExpiry, &user.PasswordResetAttempts,
		&user.CreatedAt, &user.UpdatedAt, &lastSeen, &user.IsActive, &user.Version,
	)
	if err != nil {
		return model.User{}, err
	}

	user.Role = model.Role(role)
	user.AuthProvider = model.AuthProvider(provider)
	user.Email = email.String
	user.PasswordHash = passwordHash.String
	user.GoogleID = googleID.String
	user.ProfilePicture = picture.String
	user.RefreshTokenHash = refreshHash.String
	user.PasswordResetOTP = otp.String
	if refreshExpiry.Valid {
		user.RefreshTokenExpiry = refreshExpiry.Time
	}
	user.RevokedOn = timePtr(revokedOn)
	user.PasswordResetOTPExpiry = timePtr(otpExpiry)
	user.LastLoginAt = timePtr(lastSeen)

	return user, nil
}

func duplicateFrom(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	field, ok := constraintFields[pgErr.ConstraintName]
	if !ok {
		field = pgErr.ConstraintName
	}
	return &model.DuplicateError{Field: field}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
