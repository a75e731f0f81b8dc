// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

// Package auth provides token-gated account provisioning and
// authentication for BNC-Insight.
//
// # Value Objects
//
// Raw input never crosses into the service as a plain string. The
// Rules type parses input into validated value objects:
//   - Rules.Token - opaque one-time signup token
//   - Rules.Username - unique account identifier
//   - Rules.Password - raw secret, hashed before storage
//   - Rules.Name - single-line display name
//
// Parsing is the only way to construct these types; a zero value is
// never produced alongside a nil error.
//
// # Service
//
// Service coordinates the signup/signin flows over the AuthToken and
// User repositories. Signup and UpdatePassword run inside a single
// database transaction with a pessimistic row lock; the lock on the
// token row is what guarantees a one-time token creates at most one
// account under concurrent requests.
package auth
