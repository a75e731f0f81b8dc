// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CAJA-The-Server/BNC-Insight/pkg/errutil"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock pool")
	t.Cleanup(mock.Close)
	return mock
}

func TestStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts an anonymous session row", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		store := NewStore(mock, time.Hour)
		sess, err := store.Create(ctx)
		require.NoError(t, err)

		assert.Len(t, sess.Token(), 64)
		assert.Equal(t, HashToken(sess.Token()), sess.ID())
		_, bound := sess.UserUID()
		assert.False(t, bound)
		assert.False(t, sess.IsExpired())
		assert.WithinDuration(t, sess.CreatedAt().Add(time.Hour), sess.ExpiresAt(), time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps insert errors", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		store := NewStore(mock, time.Hour)
		sess, err := store.Create(ctx)
		assert.Nil(t, sess)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_CREATE_FAILED")
	})
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("loads a live session by plaintext token", func(t *testing.T) {
		mock := newMockPool(t)
		token, hash, err := GenerateToken()
		require.NoError(t, err)

		now := time.Now()
		uid := int32(7)
		mock.ExpectQuery(`SELECT user_uid, created_at, expires_at`).
			WithArgs(hash).
			WillReturnRows(pgxmock.NewRows([]string{"user_uid", "created_at", "expires_at"}).
				AddRow(&uid, now, now.Add(time.Hour)))

		store := NewStore(mock, time.Hour)
		sess, err := store.Get(ctx, token)
		require.NoError(t, err)

		assert.Equal(t, hash, sess.ID())
		assert.Empty(t, sess.Token(), "plaintext token never round-trips through the store")
		got, bound := sess.UserUID()
		assert.True(t, bound)
		assert.Equal(t, int32(7), got)
	})

	t.Run("rejects an empty token without hitting the store", func(t *testing.T) {
		mock := newMockPool(t)
		store := NewStore(mock, time.Hour)

		sess, err := store.Get(ctx, "")
		assert.Nil(t, sess)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("maps an unknown token to not-found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT user_uid, created_at, expires_at`).
			WithArgs(HashToken("unknown")).
			WillReturnRows(pgxmock.NewRows([]string{"user_uid", "created_at", "expires_at"}))

		store := NewStore(mock, time.Hour)
		sess, err := store.Get(ctx, "unknown")
		assert.Nil(t, sess)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("maps an expired session to not-found", func(t *testing.T) {
		mock := newMockPool(t)
		now := time.Now()
		mock.ExpectQuery(`SELECT user_uid, created_at, expires_at`).
			WithArgs(HashToken("stale")).
			WillReturnRows(pgxmock.NewRows([]string{"user_uid", "created_at", "expires_at"}).
				AddRow((*int32)(nil), now.Add(-2*time.Hour), now.Add(-time.Hour)))

		store := NewStore(mock, time.Hour)
		sess, err := store.Get(ctx, "stale")
		assert.Nil(t, sess)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSession_SetUserUID(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and records the uid", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		store := NewStore(mock, time.Hour)
		sess, err := store.Create(ctx)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE sessions SET user_uid`).
			WithArgs(sess.ID(), int32(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, sess.SetUserUID(ctx, 7))
		uid, bound := sess.UserUID()
		assert.True(t, bound)
		assert.Equal(t, int32(7), uid)
	})

	t.Run("fails when the row is gone", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		store := NewStore(mock, time.Hour)
		sess, err := store.Create(ctx)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE sessions SET user_uid`).
			WithArgs(sess.ID(), int32(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = sess.SetUserUID(ctx, 7)
		require.ErrorIs(t, err, ErrNotFound)
		_, bound := sess.UserUID()
		assert.False(t, bound, "uid must not be recorded when the write fails")
	})
}

func TestSession_Destroy(t *testing.T) {
	ctx := context.Background()

	newSession := func(t *testing.T, mock pgxmock.PgxPoolIface) *Session {
		t.Helper()
		mock.ExpectExec(`INSERT INTO sessions`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		store := NewStore(mock, time.Hour)
		sess, err := store.Create(ctx)
		require.NoError(t, err)
		return sess
	}

	t.Run("deletes the row and clears state", func(t *testing.T) {
		mock := newMockPool(t)
		sess := newSession(t, mock)

		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(sess.ID()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, sess.Destroy(ctx))
		_, bound := sess.UserUID()
		assert.False(t, bound)
	})

	t.Run("is idempotent", func(t *testing.T) {
		mock := newMockPool(t)
		sess := newSession(t, mock)

		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(sess.ID()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, sess.Destroy(ctx))
		require.NoError(t, sess.Destroy(ctx), "second destroy must be a no-op")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tolerates an already-deleted row", func(t *testing.T) {
		mock := newMockPool(t)
		sess := newSession(t, mock)

		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(sess.ID()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, sess.Destroy(ctx))
	})

	t.Run("rejects writes after destroy", func(t *testing.T) {
		mock := newMockPool(t)
		sess := newSession(t, mock)

		mock.ExpectExec(`DELETE FROM sessions`).
			WithArgs(sess.ID()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		require.NoError(t, sess.Destroy(ctx))

		err := sess.SetUserUID(ctx, 7)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_DESTROYED")
	})
}

func TestStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the deleted count", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE expires_at`).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		store := NewStore(mock, time.Hour)
		count, err := store.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("wraps delete errors", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM sessions WHERE expires_at`).
			WillReturnError(errors.New("connection refused"))

		store := NewStore(mock, time.Hour)
		_, err := store.DeleteExpired(ctx)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SESSION_DELETE_EXPIRED_FAILED")
	})
}
