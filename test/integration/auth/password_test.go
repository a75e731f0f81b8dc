// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BNC-Insight Contributors

//go:build integration

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/CAJA-The-Server/BNC-Insight/internal/auth"
)

var _ = Describe("UpdatePassword", func() {
	var ctx context.Context
	var uid int32

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)

		Expect(createToken(ctx, "invite-1", false)).To(Succeed())
		sess := newSession(ctx)
		Expect(env.Service.Signup(ctx, sess, "invite-1", "alice", "correct horse", "Alice")).To(Succeed())
		var bound bool
		uid, bound = sess.UserUID()
		Expect(bound).To(BeTrue())
	})

	It("rotates the password", func() {
		Expect(env.Service.UpdatePassword(ctx, uid, "correct horse", "battery staple")).To(Succeed())

		err := env.Service.Signin(ctx, newSession(ctx), "alice", "correct horse")
		Expect(errors.Is(err, auth.ErrIncorrectPassword)).To(BeTrue(), "old password must stop working")

		Expect(env.Service.Signin(ctx, newSession(ctx), "alice", "battery staple")).To(Succeed())
	})

	It("advances updated_at on rotation via the schema trigger", func() {
		Expect(env.Service.UpdatePassword(ctx, uid, "correct horse", "battery staple")).To(Succeed())

		var advanced bool
		err := env.pool.QueryRow(ctx,
			`SELECT updated_at > created_at FROM users WHERE uid = $1`, uid).Scan(&advanced)
		Expect(err).NotTo(HaveOccurred())
		Expect(advanced).To(BeTrue(), "trigger must bump updated_at past created_at")
	})

	It("rejects a wrong current password and keeps the old one", func() {
		err := env.Service.UpdatePassword(ctx, uid, "not the one", "battery staple")
		Expect(errors.Is(err, auth.ErrIncorrectPassword)).To(BeTrue())

		Expect(env.Service.Signin(ctx, newSession(ctx), "alice", "correct horse")).To(Succeed())
	})

	It("fails for a uid without an account row", func() {
		err := env.Service.UpdatePassword(ctx, uid+1000, "correct horse", "battery staple")
		Expect(errors.Is(err, auth.ErrUserNotFound)).To(BeTrue())
	})

	It("serializes concurrent rotations so one final password wins", func() {
		// Every goroutine rotates from whatever the current password is
		// to its own candidate. The row lock serializes them; exactly
		// one chain of successes forms and the final password is the
		// last successful candidate.
		const n = 4
		results := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer GinkgoRecover()
				results[i] = env.Service.UpdatePassword(ctx, uid,
					"correct horse", fmt.Sprintf("candidate %d!", i))
			}(i)
		}
		wg.Wait()

		winners := 0
		var winner string
		for i, err := range results {
			if err == nil {
				winners++
				winner = fmt.Sprintf("candidate %d!", i)
			} else {
				Expect(errors.Is(err, auth.ErrIncorrectPassword)).To(BeTrue(),
					"losers must see the already-rotated hash, got: %v", err)
			}
		}
		Expect(winners).To(Equal(1), "only the first rotation sees the original password")

		Expect(env.Service.Signin(ctx, newSession(ctx), "alice", winner)).To(Succeed())
	})
})
