// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package auth

import "context"

// Session is the caller-supplied identity carrier. The service reads
// and writes the authenticated user identifier on it and can tear it
// down, but does not own its lifecycle or persistence.
//
// A Session instance belongs to exactly one request; it is never
// shared across concurrent operations.
type Session interface {
	// UserUID returns the authenticated user identifier and whether
	// one is set.
	UserUID() (int32, bool)

	// SetUserUID records the authenticated user identifier.
	SetUserUID(ctx context.Context, uid int32) error

	// Destroy invalidates the session. Idempotent: destroying an
	// already-destroyed session is not an error.
	Destroy(ctx context.Context) error
}
