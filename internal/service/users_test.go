// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/store"
)

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.member(t, "admin@example.com", true)
	_, member := env.member(t, "member@example.com", false)

	_, err := env.authorship.CreateDraft(ctx, member, DraftInput{Title: "one"})
	require.NoError(t, err)

	_, err = env.users.ListUsers(ctx, member)
	assert.ErrorIs(t, err, ErrAdminRequired)

	users, err := env.users.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)

	counts := map[string]int64{}
	for _, u := range users {
		counts[u.Email] = u.PostCount
	}
	assert.Equal(t, map[string]int64{"admin@example.com": 0, "member@example.com": 1}, counts)
}

func TestSetAdminSelfRevocation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	self, admin := env.member(t, "admin@example.com", true)

	for range 2 {
		_, err := env.users.SetAdmin(ctx, admin, self.ID, false)
		require.ErrorIs(t, err, ErrValidation)
		assert.EqualError(t, err, "You cannot remove admin access from yourself")
	}

	user, err := store.New(env.db).GetUserByID(ctx, self.ID)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin, "admin flag must be unchanged")

	// Self-grant is a harmless no-op.
	updated, err := env.users.SetAdmin(ctx, admin, self.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)
}

func TestSetAdminGrantAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adminUser, admin := env.member(t, "admin@example.com", true)
	target, targetID := env.member(t, "member@example.com", false)

	updated, err := env.users.SetAdmin(ctx, admin, target.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)
	assert.True(t, env.policy.IsAdminStatus(ctx, targetID))

	// The new admin can now revoke the one who promoted them.
	updated, err = env.users.SetAdmin(ctx, targetID, adminUser.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin)

	_, err = env.users.SetAdmin(ctx, admin, target.ID, false)
	assert.ErrorIs(t, err, ErrAdminRequired, "revoked admin loses access immediately")

	history, err := env.audit.ForTarget(ctx, targetID, model.AuditTargetUser, target.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.AuditActionGrantAdmin, history[0].Action)
	require.NotNil(t, history[0].ActorID)
	assert.Equal(t, adminUser.ID, *history[0].ActorID)
}

func TestSetAdminErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, admin := env.member(t, "admin@example.com", true)
	member, memberID := env.member(t, "member@example.com", false)

	_, err := env.users.SetAdmin(ctx, admin, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.users.SetAdmin(ctx, admin, 0, true)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.users.SetAdmin(ctx, memberID, member.ID, true)
	assert.ErrorIs(t, err, ErrForbidden, "members cannot promote themselves")
}

func TestGrantAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	member, _ := env.member(t, "member@example.com", false)

	user, err := env.users.GrantAdmin(ctx, "  MEMBER@example.com ")
	require.NoError(t, err)
	assert.Equal(t, member.ID, user.ID)
	assert.True(t, user.IsAdmin)

	// Granting again is a no-op.
	_, err = env.users.GrantAdmin(ctx, "member@example.com")
	require.NoError(t, err)

	_, err = env.users.GrantAdmin(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.users.GrantAdmin(ctx, "not-an-email")
	assert.ErrorIs(t, err, ErrValidation)

	entries, err := store.New(env.db).ListAuditForTarget(ctx, store.ListAuditForTargetParams{
		TargetKind: model.AuditTargetUser,
		TargetID:   member.ID,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].ActorID.Valid, "operator grants have no actor")
}

func TestEnsureUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.users.EnsureUser(ctx, identity.Identity{Email: "Jo@Example.com", Name: " Jo "})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", first.Email)
	assert.Equal(t, "Jo", first.Name)
	assert.False(t, first.IsAdmin)

	again, err := env.users.EnsureUser(ctx, identity.Identity{Email: "jo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = env.users.EnsureUser(ctx, identity.Identity{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAccessPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adminUser, admin := env.member(t, "admin@example.com", true)
	_, member := env.member(t, "member@example.com", false)

	profile, err := env.policy.ResolveAdmin(ctx, identity.Identity{Email: " ADMIN@example.com"})
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, AdminProfile{ID: adminUser.ID, Email: "admin@example.com", Name: "admin@example.com"}, *profile)

	for _, caller := range []identity.Identity{{}, member, {Email: "ghost@example.com"}} {
		profile, err := env.policy.ResolveAdmin(ctx, caller)
		require.NoError(t, err)
		assert.Nil(t, profile)
		assert.False(t, env.policy.IsAdminStatus(ctx, caller))
	}

	assert.True(t, env.policy.IsAdminStatus(ctx, admin))
}
