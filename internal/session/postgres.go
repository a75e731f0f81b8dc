// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// ErrNotFound is returned when no live session matches the presented
// token.
var ErrNotFound = errors.New("session not found")

// pool abstracts the pgx pool surface the store needs; the pgxmock
// pool satisfies it in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store manages persisted sessions keyed by token hash.
type Store struct {
	pool pool
	ttl  time.Duration
}

// NewStore creates a session store. ttl is the lifetime of newly
// created sessions.
func NewStore(p pool, ttl time.Duration) *Store {
	return &Store{pool: p, ttl: ttl}
}

// Create generates a fresh session token, inserts the row, and returns
// the session carrying the plaintext token.
func (st *Store) Create(ctx context.Context) (*Session, error) {
	token, hash, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(st.ttl)
	_, err = st.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_uid, created_at, expires_at)
		VALUES ($1, NULL, $2, $3)
	`, hash, now, expiresAt)
	if err != nil {
		return nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			Wrap(err)
	}

	return &Session{
		id:        hash,
		token:     token,
		createdAt: now,
		expiresAt: expiresAt,
		store:     st,
	}, nil
}

// Get loads the session matching the plaintext token. Expired or
// unknown tokens yield ErrNotFound.
func (st *Store) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}

	sess := Session{id: HashToken(token), store: st}
	err := st.pool.QueryRow(ctx, `
		SELECT user_uid, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`, sess.id).Scan(&sess.userUID, &sess.createdAt, &sess.expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	if sess.IsExpired() {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("expired", true).
			Wrap(ErrNotFound)
	}
	return &sess, nil
}

// DeleteExpired removes all expired session rows and returns the count
// of deleted records.
func (st *Store) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := st.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// setUserUID persists the authenticated uid on a session row.
func (st *Store) setUserUID(ctx context.Context, id string, uid int32) error {
	result, err := st.pool.Exec(ctx, `
		UPDATE sessions SET user_uid = $2 WHERE id = $1
	`, id, uid)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "set session user uid").
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}
	return nil
}

// delete removes a session row. A missing row is not an error:
// teardown is idempotent.
func (st *Store) delete(ctx context.Context, id string) error {
	_, err := st.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}
