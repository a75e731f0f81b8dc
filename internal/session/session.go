// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

// Package session provides the store-backed session carrier handed to
// the auth service. Each Session belongs to exactly one request; the
// auth core only sees the auth.Session interface.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// Session token configuration.
const (
	TokenBytes = 32 // 32 bytes = 64 hex chars
)

// Session is a persisted web session. The plaintext token is only
// available on freshly created sessions; the store keeps the SHA-256
// hash as the row key.
type Session struct {
	id        string
	token     string
	userUID   *int32
	createdAt time.Time
	expiresAt time.Time
	store     *Store
	destroyed bool
}

// ID returns the token hash identifying the session row.
func (s *Session) ID() string { return s.id }

// Token returns the plaintext token for newly created sessions, empty
// for sessions loaded from the store.
func (s *Session) Token() string { return s.token }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// ExpiresAt returns the session expiry time.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.expiresAt)
}

// UserUID returns the authenticated user identifier and whether one is
// set.
func (s *Session) UserUID() (int32, bool) {
	if s.userUID == nil {
		return 0, false
	}
	return *s.userUID, true
}

// SetUserUID records the authenticated user identifier and persists it.
func (s *Session) SetUserUID(ctx context.Context, uid int32) error {
	if s.destroyed {
		return oops.Code("SESSION_DESTROYED").Errorf("session has been destroyed")
	}
	if err := s.store.setUserUID(ctx, s.id, uid); err != nil {
		return err
	}
	s.userUID = &uid
	return nil
}

// Destroy removes the session row and clears the in-memory state.
// Idempotent: destroying twice, or destroying a session whose row is
// already gone, is not an error.
func (s *Session) Destroy(ctx context.Context) error {
	if s.destroyed {
		return nil
	}
	if err := s.store.delete(ctx, s.id); err != nil {
		return err
	}
	s.destroyed = true
	s.userUID = nil
	return nil
}

// GenerateToken creates a secure random session token and its hash.
// The plaintext token goes to the client; the hash is the row key.
func GenerateToken() (token, hash string, err error) {
	tokenBytes := make([]byte, TokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	token = hex.EncodeToString(tokenBytes)
	return token, HashToken(token), nil
}

// HashToken computes the SHA-256 hash of a session token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyToken checks the plaintext token against a stored hash using a
// constant-time comparison.
func VerifyToken(token, hash string) bool {
	computed := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
