// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/CAJA-The-Server/BNC-Insight/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(p pool) *UserRepository {
	return &UserRepository{pool: p}
}

// ExistsByUsername reports whether an account with the username exists.
// Non-locking; the unique constraint at insert time is authoritative.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username auth.Username) (bool, error) {
	var exists bool
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
	`, username.Value()).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "check username existence").
			Wrap(err)
	}
	return exists, nil
}

// GetByUID retrieves an account projection by uid. The password hash
// is not part of the selection.
func (r *UserRepository) GetByUID(ctx context.Context, uid int32) (*auth.User, error) {
	var user auth.User
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT uid, username, name, is_admin, created_at, updated_at
		FROM users
		WHERE uid = $1
	`, uid).Scan(&user.UID, &user.Username, &user.Name, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("uid", uid).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_UID_FAILED").
			With("operation", "get user by uid").
			With("uid", uid).
			Wrap(err)
	}
	return &user, nil
}

// GetCredentialsByUsername retrieves the narrow {uid, password_hash}
// projection used for signin verification. Read-only, no lock.
func (r *UserRepository) GetCredentialsByUsername(ctx context.Context, username auth.Username) (*auth.Credentials, error) {
	var creds auth.Credentials
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT uid, password_hash
		FROM users
		WHERE username = $1
	`, username.Value()).Scan(&creds.UID, &creds.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_CREDENTIALS_FAILED").
			With("operation", "get credentials by username").
			Wrap(err)
	}
	return &creds, nil
}

// LockPasswordHash reads the password hash for uid under a FOR UPDATE
// lock, serializing concurrent rotations for the same account.
func (r *UserRepository) LockPasswordHash(ctx context.Context, uid int32) (string, error) {
	tx, err := requireTx(ctx, "lock password hash")
	if err != nil {
		return "", err
	}

	var hash string
	err = tx.QueryRow(ctx, `
		SELECT password_hash
		FROM users
		WHERE uid = $1
		FOR UPDATE
	`, uid).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", oops.Code("USER_NOT_FOUND").With("uid", uid).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return "", oops.Code("USER_LOCK_HASH_FAILED").
			With("operation", "lock password hash").
			With("uid", uid).
			Wrap(err)
	}
	return hash, nil
}

// Create inserts a new account row and returns the generated uid.
// A unique-constraint violation on username surfaces as a conflict
// error, distinct from the domain-level auth.ErrInvalidUsername.
func (r *UserRepository) Create(ctx context.Context, user auth.NewUser) (int32, error) {
	var uid int32
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (username, password_hash, name, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING uid
	`, user.Username.Value(), user.PasswordHash, user.Name.Value(), user.IsAdmin).Scan(&uid)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, oops.Code("USER_USERNAME_CONFLICT").
				With("username", user.Username.Value()).
				Wrap(err)
		}
		return 0, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username.Value()).
			Wrap(err)
	}
	return uid, nil
}

// UpdatePasswordHash overwrites the password hash for uid inside the
// active transaction. Zero affected rows means the account disappeared
// between lock and write.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, uid int32, passwordHash string) error {
	tx, err := requireTx(ctx, "update password hash")
	if err != nil {
		return err
	}

	// updated_at is maintained by the users_set_updated_at trigger.
	result, err := tx.Exec(ctx, `
		UPDATE users SET password_hash = $2
		WHERE uid = $1
	`, uid, passwordHash)
	if err != nil {
		return oops.Code("USER_UPDATE_HASH_FAILED").
			With("operation", "update password hash").
			With("uid", uid).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("uid", uid).Wrap(auth.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
