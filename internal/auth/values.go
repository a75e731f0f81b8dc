// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
)

// TokenMaxLength bounds the opaque token value regardless of deployment
// configuration.
const TokenMaxLength = 128

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Rules carries the configured length bounds for account value objects.
// Bounds are inclusive. A Rules value is built once from configuration
// at startup and never mutated.
type Rules struct {
	UsernameMin int
	UsernameMax int
	PasswordMin int
	PasswordMax int
	NameMin     int
	NameMax     int
}

// Token is a validated one-time signup token value.
type Token struct {
	value string
}

// Username is a validated account username.
type Username struct {
	value string
}

// Password is a validated raw secret. It is hashed before it reaches
// any store; Password itself is never persisted.
type Password struct {
	value string
}

// Name is a validated single-line display name.
type Name struct {
	value string
}

// Value returns the wrapped token string.
func (t Token) Value() string { return t.value }

// Value returns the wrapped username string.
func (u Username) Value() string { return u.value }

// Value returns the wrapped password string.
func (p Password) Value() string { return p.value }

// Value returns the wrapped name string.
func (n Name) Value() string { return n.value }

// Token parses a raw token value. Tokens are opaque: any non-empty
// single-line value up to TokenMaxLength is accepted.
func (r Rules) Token(raw string) (Token, error) {
	if raw == "" {
		return Token{}, oops.Code("AUTH_INVALID_TOKEN").
			Wrapf(ErrInvalidAuthToken, "token cannot be empty")
	}
	if len(raw) > TokenMaxLength {
		return Token{}, oops.Code("AUTH_INVALID_TOKEN").
			With("max", TokenMaxLength).
			Wrapf(ErrInvalidAuthToken, "token exceeds %d bytes", TokenMaxLength)
	}
	if strings.ContainsAny(raw, "\r\n") {
		return Token{}, oops.Code("AUTH_INVALID_TOKEN").
			Wrapf(ErrInvalidAuthToken, "token must be a single line")
	}
	return Token{value: raw}, nil
}

// Username parses a raw username.
// Username requirements:
// - Length: UsernameMin to UsernameMax bytes
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func (r Rules) Username(raw string) (Username, error) {
	if raw == "" {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			Wrapf(ErrInvalidUsername, "username cannot be empty")
	}
	if len(raw) < r.UsernameMin {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			With("min", r.UsernameMin).
			Wrapf(ErrInvalidUsername, "username must be at least %d characters", r.UsernameMin)
	}
	if len(raw) > r.UsernameMax {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			With("max", r.UsernameMax).
			Wrapf(ErrInvalidUsername, "username must be at most %d characters", r.UsernameMax)
	}
	if !usernameRegex.MatchString(raw) {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			Wrapf(ErrInvalidUsername, "username must start with a letter and contain only letters, numbers, and underscores")
	}
	return Username{value: raw}, nil
}

// Password parses a raw password. Only length is checked; hashing
// happens downstream.
func (r Rules) Password(raw string) (Password, error) {
	if len(raw) < r.PasswordMin {
		return Password{}, oops.Code("AUTH_INVALID_PASSWORD").
			With("min", r.PasswordMin).
			Wrapf(ErrInvalidPassword, "password must be at least %d characters", r.PasswordMin)
	}
	if len(raw) > r.PasswordMax {
		return Password{}, oops.Code("AUTH_INVALID_PASSWORD").
			With("max", r.PasswordMax).
			Wrapf(ErrInvalidPassword, "password must be at most %d characters", r.PasswordMax)
	}
	return Password{value: raw}, nil
}

// Name parses a raw display name. Names are free text bounded in
// length and restricted to a single line. Bounds count characters,
// not bytes, so multibyte names are not penalized.
func (r Rules) Name(raw string) (Name, error) {
	if strings.ContainsRune(raw, '\n') {
		return Name{}, oops.Code("AUTH_INVALID_NAME").
			Wrapf(ErrInvalidName, "name must be a single line")
	}
	if utf8.RuneCountInString(raw) < r.NameMin {
		return Name{}, oops.Code("AUTH_INVALID_NAME").
			With("min", r.NameMin).
			Wrapf(ErrInvalidName, "name must be at least %d characters", r.NameMin)
	}
	if utf8.RuneCountInString(raw) > r.NameMax {
		return Name{}, oops.Code("AUTH_INVALID_NAME").
			With("max", r.NameMax).
			Wrapf(ErrInvalidName, "name must be at most %d characters", r.NameMax)
	}
	return Name{value: raw}, nil
}
