// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/store"
)

// AdminProfile is the privileged caller resolved by AccessPolicy.
type AdminProfile struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AccessPolicy is the single gate for admin-only operations. Every
// moderation and user-management call resolves the caller through it
// before touching state.
type AccessPolicy struct {
	queries *store.Queries
}

// NewAccessPolicy creates an AccessPolicy reading users from db.
func NewAccessPolicy(db store.DBTX) *AccessPolicy {
	return &AccessPolicy{queries: store.New(db)}
}

// ResolveAdmin returns the admin profile for id, or nil when the identity
// is empty, has no user row or the user is not an admin.
func (p *AccessPolicy) ResolveAdmin(ctx context.Context, id identity.Identity) (*AdminProfile, error) {
	email := model.NormalizeEmail(id.Email)
	if email == "" {
		return nil, nil
	}

	user, err := p.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("resolve admin", err, "email", email)
	}
	if !user.IsAdmin {
		return nil, nil
	}

	return &AdminProfile{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

// RequireAdmin is ResolveAdmin that fails with ErrAdminRequired instead of
// returning nil. Anonymous callers get the same error as non-admins.
func (p *AccessPolicy) RequireAdmin(ctx context.Context, id identity.Identity) (*AdminProfile, error) {
	admin, err := p.ResolveAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrAdminRequired
	}
	return admin, nil
}

// IsAdminStatus reports whether id belongs to an admin. It is for display
// decisions only; lookup failures are logged and reported as false.
func (p *AccessPolicy) IsAdminStatus(ctx context.Context, id identity.Identity) bool {
	email := model.NormalizeEmail(id.Email)
	if email == "" {
		return false
	}

	user, err := p.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("admin status lookup failed", "email", email, "error", err)
		}
		return false
	}
	return user.IsAdmin
}
