// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session stores the signed-in identity in a server side session
// backed by the application's SQLite database.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/koinonia/internal/identity"
)

// Session keys
const (
	keyEmail = "identity_email"
	keyName  = "identity_name"
)

// DefaultLifetime is used when New is given a zero lifetime.
const DefaultLifetime = 24 * time.Hour

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, lifetime time.Duration, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	sm.Lifetime = lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// PutIdentity records id in the current session. The token is renewed
// first so a pre-login session id cannot be fixed by an attacker.
func PutIdentity(ctx context.Context, sm *scs.SessionManager, id identity.Identity) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, keyEmail, id.Email)
	sm.Put(ctx, keyName, id.Name)
	return nil
}

// GetIdentity returns the identity recorded in the current session.
func GetIdentity(ctx context.Context, sm *scs.SessionManager) (identity.Identity, bool) {
	email := sm.GetString(ctx, keyEmail)
	if email == "" {
		return identity.Identity{}, false
	}
	return identity.Identity{Email: email, Name: sm.GetString(ctx, keyName)}, true
}

// Clear destroys the current session.
func Clear(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}
