// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Transactor runs a function inside a single database transaction.
// The active transaction travels in the context handed to fn;
// transaction-aware repository methods pick it up from there.
type Transactor interface {
	// InTransaction begins a transaction and calls fn. If fn returns
	// nil the transaction is committed, otherwise it is rolled back
	// and no partial state remains.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides the account provisioning and authentication
// operations.
type Service struct {
	rules  Rules
	tokens AuthTokenRepository
	users  UserRepository
	hasher PasswordHasher
	tx     Transactor
}

// NewService creates a Service. All dependencies are required.
func NewService(rules Rules, tokens AuthTokenRepository, users UserRepository, hasher PasswordHasher, tx Transactor) (*Service, error) {
	if tokens == nil {
		return nil, oops.Errorf("auth token repository is required")
	}
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	return &Service{
		rules:  rules,
		tokens: tokens,
		users:  users,
		hasher: hasher,
		tx:     tx,
	}, nil
}

// Rules returns the configured value-object rules, for callers that
// validate input shapes before invoking the service.
func (s *Service) Rules() Rules { return s.rules }

// dummyPasswordHash is verified against when a signin misses the user
// row, so that absent and present usernames take comparable time.
// This is NOT a real credential: the result of the comparison is
// discarded and the operation fails with ErrUserNotFound regardless.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// VerifyAuthToken checks that the raw value parses as a token and that
// the token row is still present. No side effects; signup re-verifies
// under lock anyway.
func (s *Service) VerifyAuthToken(ctx context.Context, raw string) error {
	token, err := s.rules.Token(raw)
	if err != nil {
		return err
	}
	exists, err := s.tokens.Exists(ctx, token)
	if err != nil {
		return oops.Code("AUTH_VERIFY_TOKEN_FAILED").
			With("operation", "check token existence").
			Wrap(err)
	}
	if !exists {
		return oops.Code("AUTH_INVALID_TOKEN").Wrap(ErrInvalidAuthToken)
	}
	return nil
}

// VerifyUsernameAvailable checks that the raw value parses as a
// username and that no account holds it yet. Malformed and taken are
// reported as the same error kind; callers wanting separate messaging
// re-run format validation via Rules.
//
// The existence check is non-locking and may race with a concurrent
// signup; the unique constraint at insert time is authoritative.
func (s *Service) VerifyUsernameAvailable(ctx context.Context, raw string) error {
	username, err := s.rules.Username(raw)
	if err != nil {
		return err
	}
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return oops.Code("AUTH_VERIFY_USERNAME_FAILED").
			With("operation", "check username existence").
			Wrap(err)
	}
	if taken {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("taken", true).
			Wrap(ErrInvalidUsername)
	}
	return nil
}

// Signup consumes a one-time token and creates an account, as one
// atomic transaction:
//
//  1. Lock the token row FOR UPDATE. This serializes all concurrent
//     signups presenting the same token value: only the first to
//     acquire the lock proceeds, the rest observe the row gone.
//  2. Hash the password.
//  3. Insert the account row, copying the admin flag from the token.
//  4. Delete the consumed token row.
//  5. Commit, then bind the new uid to the session.
//
// Any failure before commit rolls the whole transaction back: no
// partial account row, no token consumed. A concurrent unique-username
// violation surfaces as a conflict error, never as ErrInvalidUsername.
func (s *Service) Signup(ctx context.Context, sess Session, rawToken, rawUsername, rawPassword, rawName string) error {
	token, err := s.rules.Token(rawToken)
	if err != nil {
		return err
	}
	username, err := s.rules.Username(rawUsername)
	if err != nil {
		return err
	}
	password, err := s.rules.Password(rawPassword)
	if err != nil {
		return err
	}
	name, err := s.rules.Name(rawName)
	if err != nil {
		return err
	}

	var uid int32
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		tok, err := s.tokens.LockForConsume(ctx, token)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("AUTH_INVALID_TOKEN").Wrap(ErrInvalidAuthToken)
			}
			return oops.Code("AUTH_SIGNUP_FAILED").
				With("operation", "lock auth token").
				Wrap(err)
		}

		passwordHash, err := s.hasher.Hash(password)
		if err != nil {
			return oops.Code("AUTH_SIGNUP_FAILED").
				With("operation", "hash password").
				Wrap(err)
		}

		uid, err = s.users.Create(ctx, NewUser{
			Username:     username,
			PasswordHash: passwordHash,
			Name:         name,
			IsAdmin:      tok.IsAdminToken,
		})
		if err != nil {
			return oops.Code("AUTH_SIGNUP_FAILED").
				With("operation", "insert user").
				With("username", username.Value()).
				Wrap(err)
		}

		if err := s.tokens.Delete(ctx, token); err != nil {
			return oops.Code("AUTH_SIGNUP_FAILED").
				With("operation", "delete auth token").
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := sess.SetUserUID(ctx, uid); err != nil {
		return oops.Code("AUTH_SESSION_WRITE_FAILED").
			With("operation", "bind uid to session").
			Wrap(err)
	}
	return nil
}

// Signin authenticates by username and password and binds the uid to
// the session. The lookup takes no lock: the path is read-only.
// Absent usernames still pay for a hash comparison so response time
// does not reveal whether the username exists.
func (s *Service) Signin(ctx context.Context, sess Session, rawUsername, rawPassword string) error {
	username, err := s.rules.Username(rawUsername)
	if err != nil {
		// A malformed username cannot name an account.
		return oops.Code("AUTH_USER_NOT_FOUND").Wrap(ErrUserNotFound)
	}
	password, err := s.rules.Password(rawPassword)
	if err != nil {
		// An out-of-bounds password cannot match any stored hash.
		return oops.Code("AUTH_INCORRECT_PASSWORD").Wrap(ErrIncorrectPassword)
	}

	creds, err := s.users.GetCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing equalization only
			return oops.Code("AUTH_USER_NOT_FOUND").Wrap(ErrUserNotFound)
		}
		return oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "get credentials by username").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(password, creds.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_SIGNIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return oops.Code("AUTH_INCORRECT_PASSWORD").Wrap(ErrIncorrectPassword)
	}

	if err := sess.SetUserUID(ctx, creds.UID); err != nil {
		return oops.Code("AUTH_SESSION_WRITE_FAILED").
			With("operation", "bind uid to session").
			Wrap(err)
	}
	return nil
}

// Signout tears down the session. Teardown errors are surfaced to the
// caller; destroying an already-destroyed session is not an error.
func (s *Service) Signout(ctx context.Context, sess Session) error {
	if err := sess.Destroy(ctx); err != nil {
		return oops.Code("AUTH_SIGNOUT_FAILED").
			With("operation", "destroy session").
			Wrap(err)
	}
	return nil
}

// CurrentUser resolves the session identity to an account projection.
// The projection never includes the password hash.
func (s *Service) CurrentUser(ctx context.Context, sess Session) (*User, error) {
	uid, ok := sess.UserUID()
	if !ok {
		return nil, oops.Code("AUTH_USER_NOT_FOUND").Wrap(ErrUserNotFound)
	}
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_USER_NOT_FOUND").
				With("uid", uid).
				Wrap(ErrUserNotFound)
		}
		return nil, oops.Code("AUTH_CURRENT_USER_FAILED").
			With("operation", "get user by uid").
			With("uid", uid).
			Wrap(err)
	}
	return user, nil
}

// UpdatePassword rotates the password for uid, as one atomic
// transaction: the current hash is read under a row lock so that
// concurrent rotations for the same account serialize and no update is
// lost, the supplied current password is verified against it, and the
// new hash overwrites it.
func (s *Service) UpdatePassword(ctx context.Context, uid int32, rawCurrent, rawNew string) error {
	current, err := s.rules.Password(rawCurrent)
	if err != nil {
		// An out-of-bounds password cannot match the stored hash.
		return oops.Code("AUTH_INCORRECT_PASSWORD").Wrap(ErrIncorrectPassword)
	}
	next, err := s.rules.Password(rawNew)
	if err != nil {
		return err
	}

	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		hash, err := s.users.LockPasswordHash(ctx, uid)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("AUTH_USER_NOT_FOUND").
					With("uid", uid).
					Wrap(ErrUserNotFound)
			}
			return oops.Code("AUTH_UPDATE_PASSWORD_FAILED").
				With("operation", "lock password hash").
				With("uid", uid).
				Wrap(err)
		}

		valid, err := s.hasher.Verify(current, hash)
		if err != nil {
			return oops.Code("AUTH_UPDATE_PASSWORD_FAILED").
				With("operation", "verify current password").
				With("uid", uid).
				Wrap(err)
		}
		if !valid {
			return oops.Code("AUTH_INCORRECT_PASSWORD").Wrap(ErrIncorrectPassword)
		}

		newHash, err := s.hasher.Hash(next)
		if err != nil {
			return oops.Code("AUTH_UPDATE_PASSWORD_FAILED").
				With("operation", "hash new password").
				With("uid", uid).
				Wrap(err)
		}

		if err := s.users.UpdatePasswordHash(ctx, uid, newHash); err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("AUTH_USER_NOT_FOUND").
					With("uid", uid).
					Wrap(ErrUserNotFound)
			}
			return oops.Code("AUTH_UPDATE_PASSWORD_FAILED").
				With("operation", "update password hash").
				With("uid", uid).
				Wrap(err)
		}
		return nil
	})
}
