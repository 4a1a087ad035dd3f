// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"testing"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/store"
	"github.com/olegiv/koinonia/internal/testutil"
)

type testEnv struct {
	db         *sql.DB
	policy     *AccessPolicy
	submit     *SubmissionService
	moderation *ModerationService
	authorship *AuthorshipService
	users      *UserService
	audit      *AuditService
	scan       *ScanService
	events     *EventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	policy := NewAccessPolicy(db)
	return &testEnv{
		db:         db,
		policy:     policy,
		submit:     NewSubmissionService(db),
		moderation: NewModerationService(db, policy),
		authorship: NewAuthorshipService(db),
		users:      NewUserService(db, policy),
		audit:      NewAuditService(db, policy),
		scan:       NewScanService(db, policy),
		events:     NewEventService(db, policy),
	}
}

// member creates a user and returns it with the identity it signs in as.
func (e *testEnv) member(t *testing.T, email string, admin bool) (store.User, identity.Identity) {
	t.Helper()
	user := testutil.CreateUser(t, e.db, email, email, admin)
	return user, identity.Identity{Email: email, Name: email}
}
