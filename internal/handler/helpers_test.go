// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/service"
	"github.com/olegiv/koinonia/internal/store"
	"github.com/olegiv/koinonia/internal/testutil"
)

type testServices struct {
	db         *sql.DB
	policy     *service.AccessPolicy
	submit     *service.SubmissionService
	moderation *service.ModerationService
	posts      *service.AuthorshipService
	users      *service.UserService
	audit      *service.AuditService
	events     *service.EventService
	scan       *service.ScanService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.TestMemoryDB(t)
	policy := service.NewAccessPolicy(db)
	return &testServices{
		db:         db,
		policy:     policy,
		submit:     service.NewSubmissionService(db),
		moderation: service.NewModerationService(db, policy),
		posts:      service.NewAuthorshipService(db),
		users:      service.NewUserService(db, policy),
		audit:      service.NewAuditService(db, policy),
		events:     service.NewEventService(db, policy),
		scan:       service.NewScanService(db, policy),
	}
}

func (s *testServices) member(t *testing.T, email string, admin bool) (store.User, identity.Identity) {
	t.Helper()
	return testutil.CreateUser(t, s.db, email, email, admin), identity.Identity{Email: email, Name: email}
}

// newRequest builds a request with an optional JSON body, caller identity
// and chi URL params given as key/value pairs.
func newRequest(t *testing.T, method, target string, body any, caller *identity.Identity, params ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if caller != nil {
		ctx = identity.WithIdentity(ctx, *caller)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return m
}

// assertStatusMessage checks the status code and the message field.
func assertStatusMessage(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	if got := decodeBody(t, rr)["message"]; got != message {
		t.Errorf("message = %v, want %q", got, message)
	}
}
