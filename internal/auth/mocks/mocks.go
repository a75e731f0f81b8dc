// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/CAJA-The-Server/BNC-Insight/internal/auth"
)

// MockAuthTokenRepository is a mock for auth.AuthTokenRepository.
type MockAuthTokenRepository struct {
	mock.Mock
}

// NewMockAuthTokenRepository creates a MockAuthTokenRepository whose
// expectations are asserted on test cleanup.
func NewMockAuthTokenRepository(t *testing.T) *MockAuthTokenRepository {
	m := &MockAuthTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuthTokenRepository) Exists(ctx context.Context, token auth.Token) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthTokenRepository) LockForConsume(ctx context.Context, token auth.Token) (*auth.AuthToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.AuthToken), args.Error(1)
}

func (m *MockAuthTokenRepository) Delete(ctx context.Context, token auth.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthTokenRepository) Create(ctx context.Context, token *auth.AuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockUserRepository is a mock for auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository whose expectations
// are asserted on test cleanup.
func NewMockUserRepository(t *testing.T) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username auth.Username) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetByUID(ctx context.Context, uid int32) (*auth.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserRepository) GetCredentialsByUsername(ctx context.Context, username auth.Username) (*auth.Credentials, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Credentials), args.Error(1)
}

func (m *MockUserRepository) LockPasswordHash(ctx context.Context, uid int32) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user auth.NewUser) (int32, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, uid int32, passwordHash string) error {
	args := m.Called(ctx, uid, passwordHash)
	return args.Error(0)
}

// MockPasswordHasher is a mock for auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations
// are asserted on test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password auth.Password) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password auth.Password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// MockSession is a mock for auth.Session.
type MockSession struct {
	mock.Mock
}

// NewMockSession creates a MockSession whose expectations are asserted
// on test cleanup.
func NewMockSession(t *testing.T) *MockSession {
	m := &MockSession{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSession) UserUID() (int32, bool) {
	args := m.Called()
	return args.Get(0).(int32), args.Bool(1)
}

func (m *MockSession) SetUserUID(ctx context.Context, uid int32) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockSession) Destroy(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTransactor is a mock for auth.Transactor. By default it is
// transparent: InTransaction invokes fn with the given context, so the
// service's transactional flow runs against the other mocks. Stub it
// with On("InTransaction", ...) to simulate begin or commit failures.
type MockTransactor struct {
	mock.Mock
	// Err, when set, is returned without invoking fn.
	Err error
}

// NewMockTransactor creates a transparent MockTransactor.
func NewMockTransactor(t *testing.T) *MockTransactor {
	m := &MockTransactor{}
	m.Mock.Test(t)
	return m
}

func (m *MockTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}

// Compile-time interface checks.
var (
	_ auth.AuthTokenRepository = (*MockAuthTokenRepository)(nil)
	_ auth.UserRepository      = (*MockUserRepository)(nil)
	_ auth.PasswordHasher      = (*MockPasswordHasher)(nil)
	_ auth.Session             = (*MockSession)(nil)
	_ auth.Transactor          = (*MockTransactor)(nil)
)
