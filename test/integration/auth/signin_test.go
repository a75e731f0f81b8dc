// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

//go:build integration

package auth_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/CAJA-The-Server/BNC-Insight/internal/auth"
	"github.com/CAJA-The-Server/BNC-Insight/internal/session"
)

var _ = Describe("Signin", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)

		Expect(createToken(ctx, "invite-1", false)).To(Succeed())
		Expect(env.Service.Signup(ctx, newSession(ctx), "invite-1", "alice", "correct horse", "Alice")).To(Succeed())
	})

	It("authenticates and binds the uid to a fresh session", func() {
		sess := newSession(ctx)
		Expect(env.Service.Signin(ctx, sess, "alice", "correct horse")).To(Succeed())

		user, err := env.Service.CurrentUser(ctx, sess)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Username).To(Equal("alice"))
	})

	It("survives a session round-trip through the store", func() {
		sess := newSession(ctx)
		Expect(env.Service.Signin(ctx, sess, "alice", "correct horse")).To(Succeed())

		reloaded, err := env.Sessions.Get(ctx, sess.Token())
		Expect(err).NotTo(HaveOccurred())

		user, err := env.Service.CurrentUser(ctx, reloaded)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Username).To(Equal("alice"))
	})

	It("rejects a wrong password", func() {
		sess := newSession(ctx)
		err := env.Service.Signin(ctx, sess, "alice", "not the password")
		Expect(errors.Is(err, auth.ErrIncorrectPassword)).To(BeTrue())

		_, bound := sess.UserUID()
		Expect(bound).To(BeFalse())
	})

	It("rejects an unknown username", func() {
		err := env.Service.Signin(ctx, newSession(ctx), "ghost", "correct horse")
		Expect(errors.Is(err, auth.ErrUserNotFound)).To(BeTrue())
	})

	It("tears down the session on signout", func() {
		sess := newSession(ctx)
		Expect(env.Service.Signin(ctx, sess, "alice", "correct horse")).To(Succeed())
		token := sess.Token()

		Expect(env.Service.Signout(ctx, sess)).To(Succeed())

		_, err := env.Sessions.Get(ctx, token)
		Expect(errors.Is(err, session.ErrNotFound)).To(BeTrue())

		_, fetchErr := env.Service.CurrentUser(ctx, sess)
		Expect(errors.Is(fetchErr, auth.ErrUserNotFound)).To(BeTrue())
	})

	It("reports availability for usernames", func() {
		Expect(env.Service.VerifyUsernameAvailable(ctx, "bob")).To(Succeed())

		err := env.Service.VerifyUsernameAvailable(ctx, "alice")
		Expect(errors.Is(err, auth.ErrInvalidUsername)).To(BeTrue())
	})
})
