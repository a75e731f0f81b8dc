// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/CAJA-The-Server/BNC-Insight/internal/auth"
)

// AuthTokenRepository implements auth.AuthTokenRepository using PostgreSQL.
type AuthTokenRepository struct {
	pool pool
}

// NewAuthTokenRepository creates a new PostgreSQL auth token repository.
func NewAuthTokenRepository(p pool) *AuthTokenRepository {
	return &AuthTokenRepository{pool: p}
}

// Exists reports whether the token row is still present. Non-locking.
func (r *AuthTokenRepository) Exists(ctx context.Context, token auth.Token) (bool, error) {
	var exists bool
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM auth_tokens WHERE token = $1)
	`, token.Value()).Scan(&exists)
	if err != nil {
		return false, oops.Code("TOKEN_EXISTS_FAILED").
			With("operation", "check token existence").
			Wrap(err)
	}
	return exists, nil
}

// LockForConsume reads the token row under a FOR UPDATE lock. A
// concurrent transaction presenting the same token value blocks here
// until this transaction commits or rolls back, after which it
// observes the row gone and fails with auth.ErrNotFound.
func (r *AuthTokenRepository) LockForConsume(ctx context.Context, token auth.Token) (*auth.AuthToken, error) {
	tx, err := requireTx(ctx, "lock auth token")
	if err != nil {
		return nil, err
	}

	var tok auth.AuthToken
	err = tx.QueryRow(ctx, `
		SELECT token, is_admin_token, created_at
		FROM auth_tokens
		WHERE token = $1
		FOR UPDATE
	`, token.Value()).Scan(&tok.Token, &tok.IsAdminToken, &tok.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_LOCK_FAILED").
			With("operation", "lock auth token").
			Wrap(err)
	}
	return &tok, nil
}

// Delete removes the token row inside the active transaction.
func (r *AuthTokenRepository) Delete(ctx context.Context, token auth.Token) error {
	tx, err := requireTx(ctx, "delete auth token")
	if err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM auth_tokens WHERE token = $1`, token.Value())
	if err != nil {
		return oops.Code("TOKEN_DELETE_FAILED").
			With("operation", "delete auth token").
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TOKEN_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// Create inserts a new token row. Used by out-of-band provisioning.
func (r *AuthTokenRepository) Create(ctx context.Context, token *auth.AuthToken) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, `
		INSERT INTO auth_tokens (token, is_admin_token, created_at)
		VALUES ($1, $2, $3)
	`, token.Token, token.IsAdminToken, token.CreatedAt)
	if err != nil {
		return oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "insert auth token").
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.AuthTokenRepository = (*AuthTokenRepository)(nil)
