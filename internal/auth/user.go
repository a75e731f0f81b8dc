// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package auth

import (
	"context"
	"time"
)

// User is the account projection returned to callers. The password
// hash is deliberately absent: credential material only travels
// through Credentials and the locking reads, never out of the package.
type User struct {
	UID       int32
	Username  string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials is the narrow projection used for password verification
// during signin.
type Credentials struct {
	UID          int32
	PasswordHash string
}

// NewUser holds the column values for inserting an account row.
// Username and Name are pre-validated value objects; PasswordHash is
// the already-hashed secret.
type NewUser struct {
	Username     Username
	PasswordHash string
	Name         Name
	IsAdmin      bool
}

// UserRepository manages account persistence.
//
// LockPasswordHash and UpdatePasswordHash must be called inside an
// active transaction (see Transactor); the other methods run on the
// pool directly.
type UserRepository interface {
	// ExistsByUsername reports whether an account with the username
	// exists. Non-locking; callers must not rely on it for uniqueness,
	// which is enforced by the unique constraint at insert time.
	ExistsByUsername(ctx context.Context, username Username) (bool, error)

	// GetByUID retrieves an account projection by uid.
	GetByUID(ctx context.Context, uid int32) (*User, error)

	// GetCredentialsByUsername retrieves the uid and password hash for
	// a username. Read-only; no lock is taken.
	GetCredentialsByUsername(ctx context.Context, username Username) (*Credentials, error)

	// LockPasswordHash reads the password hash for uid under a row
	// lock, serializing concurrent password rotations.
	LockPasswordHash(ctx context.Context, uid int32) (string, error)

	// Create inserts a new account row and returns the generated uid.
	Create(ctx context.Context, user NewUser) (int32, error)

	// UpdatePasswordHash overwrites the password hash for uid.
	// Returns ErrNotFound if no row was affected.
	UpdatePasswordHash(ctx context.Context, uid int32, passwordHash string) error
}
