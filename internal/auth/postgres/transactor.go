// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

// Package postgres implements the auth repositories using PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// querier abstracts query execution over *pgxpool.Pool, pgx.Tx, and
// the pgxmock pool used in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pool is the connection pool surface the repositories and the
// Transactor need.
type pool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// txKey is the context key under which the active transaction travels.
type txKey struct{}

// Transactor implements auth.Transactor over a pgx connection pool.
// It stores the active pgx.Tx in context so that transaction-aware
// repository methods participate in the same transaction.
type Transactor struct {
	pool pool
}

// NewTransactor creates a Transactor backed by the given connection pool.
func NewTransactor(p pool) *Transactor {
	return &Transactor{pool: p}
}

// InTransaction begins a transaction, stores it in context, and calls
// fn. If fn returns nil, the transaction is committed. Otherwise it is
// rolled back and no partial state remains.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// txFromContext extracts the active transaction, if any.
func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// queryEngine resolves the querier for a call: the active transaction
// when one travels in ctx, the pool otherwise.
func queryEngine(ctx context.Context, p pool) querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return p
}

// requireTx returns the active transaction or an error. Locking reads
// are meaningless outside a transaction: the row lock would be
// released immediately.
func requireTx(ctx context.Context, operation string) (pgx.Tx, error) {
	tx, ok := txFromContext(ctx)
	if !ok {
		return nil, oops.Code("TX_REQUIRED").
			With("operation", operation).
			Errorf("%s requires an active transaction", operation)
	}
	return tx, nil
}
