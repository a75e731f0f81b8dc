// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package auth

import (
	"context"
	"time"
)

// AuthToken is a one-time invitation credential. A row exists only
// until a signup consumes it; deletion is the consumption signal.
// Tokens are created out of band (the token CLI command), never by the
// service itself.
type AuthToken struct {
	Token        string
	IsAdminToken bool
	CreatedAt    time.Time
}

// AuthTokenRepository manages invitation token persistence.
type AuthTokenRepository interface {
	// Exists reports whether the token row is still present.
	// Non-locking; used for the live pre-validation check only.
	Exists(ctx context.Context, token Token) (bool, error)

	// LockForConsume reads the token row under a FOR UPDATE lock,
	// blocking concurrent signups presenting the same value until the
	// surrounding transaction commits or rolls back. Returns
	// ErrNotFound if the row is absent. Must be called inside an
	// active transaction.
	LockForConsume(ctx context.Context, token Token) (*AuthToken, error)

	// Delete removes the token row. Called only after the account row
	// has been inserted in the same transaction.
	Delete(ctx context.Context, token Token) error

	// Create inserts a new token row. Used by out-of-band
	// provisioning, not by the signup flow.
	Create(ctx context.Context, token *AuthToken) error
}
