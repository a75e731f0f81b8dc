// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package auth

import "errors"

// ErrNotFound is returned by repositories when a requested row does not
// exist. The service translates it into one of the domain errors below.
var ErrNotFound = errors.New("not found")

// Domain errors. These four are the expected, caller-recoverable
// outcomes of the service operations. Anything else that comes out of
// the service is an infrastructure failure and must not be treated as
// one of these kinds.
var (
	// ErrInvalidAuthToken covers both a malformed token value and a
	// token that is unknown or already consumed.
	ErrInvalidAuthToken = errors.New("invalid auth token")

	// ErrInvalidUsername covers both a malformed username and a
	// username that is already taken.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrUserNotFound is returned when no session identity is set or
	// no matching account row exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrIncorrectPassword is returned when hash verification fails.
	ErrIncorrectPassword = errors.New("incorrect password")
)

// Value-object errors. These indicate caller-side validation gaps, not
// domain outcomes: the service operations expect pre-validated input
// for password and name.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidName     = errors.New("invalid name")
)
