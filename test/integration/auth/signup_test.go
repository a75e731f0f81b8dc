// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

//go:build integration

package auth_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/CAJA-The-Server/BNC-Insight/internal/auth"
)

var _ = Describe("Signup", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)
	})

	It("creates an account and consumes the token", func() {
		Expect(createToken(ctx, "invite-1", false)).To(Succeed())
		sess := newSession(ctx)

		Expect(env.Service.Signup(ctx, sess, "invite-1", "alice", "correct horse", "Alice")).To(Succeed())

		uid, bound := sess.UserUID()
		Expect(bound).To(BeTrue())

		user, err := env.Users.GetByUID(ctx, uid)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Username).To(Equal("alice"))
		Expect(user.Name).To(Equal("Alice"))
		Expect(user.IsAdmin).To(BeFalse())

		// The token is spent.
		err = env.Service.VerifyAuthToken(ctx, "invite-1")
		Expect(errors.Is(err, auth.ErrInvalidAuthToken)).To(BeTrue())
	})

	It("copies the admin flag from an admin token", func() {
		Expect(createToken(ctx, "admin-invite", true)).To(Succeed())
		sess := newSession(ctx)

		Expect(env.Service.Signup(ctx, sess, "admin-invite", "root_user", "correct horse", "Root")).To(Succeed())

		uid, _ := sess.UserUID()
		user, err := env.Users.GetByUID(ctx, uid)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.IsAdmin).To(BeTrue())
	})

	It("rejects a token that was never issued", func() {
		sess := newSession(ctx)

		err := env.Service.Signup(ctx, sess, "forged", "alice", "correct horse", "Alice")
		Expect(errors.Is(err, auth.ErrInvalidAuthToken)).To(BeTrue())

		_, bound := sess.UserUID()
		Expect(bound).To(BeFalse())
	})

	It("admits exactly one of N concurrent signups on the same token", func() {
		Expect(createToken(ctx, "contested", false)).To(Succeed())

		const n = 8
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer GinkgoRecover()
				sess := newSession(ctx)
				errs[i] = env.Service.Signup(ctx, sess,
					"contested",
					string(rune('a'+i))+"_racer",
					"correct horse",
					"Racer")
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				Expect(errors.Is(err, auth.ErrInvalidAuthToken)).To(BeTrue(),
					"losers must observe the token as consumed, got: %v", err)
			}
		}
		Expect(winners).To(Equal(1))

		var count int
		Expect(env.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1), "exactly one account row")

		Expect(env.pool.QueryRow(ctx, `SELECT count(*) FROM auth_tokens`).Scan(&count)).To(Succeed())
		Expect(count).To(BeZero(), "the token row is gone")
	})

	It("leaves the token intact when the username is already taken", func() {
		Expect(createToken(ctx, "invite-1", false)).To(Succeed())
		Expect(createToken(ctx, "invite-2", false)).To(Succeed())

		Expect(env.Service.Signup(ctx, newSession(ctx), "invite-1", "alice", "correct horse", "Alice")).To(Succeed())

		err := env.Service.Signup(ctx, newSession(ctx), "invite-2", "alice", "correct horse", "Alice Again")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, auth.ErrInvalidUsername)).To(BeFalse(),
			"a uniqueness race is a conflict, not a validation failure")

		// The losing signup rolled back: its token is still live.
		Expect(env.Service.VerifyAuthToken(ctx, "invite-2")).To(Succeed())
	})
})
