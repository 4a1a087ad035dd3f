// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/metrics"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/store"
	"github.com/olegiv/koinonia/internal/util"
)

// UserService manages user rows and admin role changes.
type UserService struct {
	db      *sql.DB
	queries *store.Queries
	policy  *AccessPolicy
	metrics *metrics.Metrics
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, policy *AccessPolicy) *UserService {
	return &UserService{
		db:      db,
		queries: store.New(db),
		policy:  policy,
	}
}

// SetMetrics sets the metrics recorder.
func (s *UserService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// EnsureUser returns the user row for id, creating it on first sign-in.
func (s *UserService) EnsureUser(ctx context.Context, id identity.Identity) (model.User, error) {
	user, err := ensureUser(ctx, s.queries, id)
	if err != nil {
		return model.User{}, err
	}
	return toUser(user), nil
}

// ListUsers returns every user with their post count, newest first.
func (s *UserService) ListUsers(ctx context.Context, caller identity.Identity) ([]model.UserSummary, error) {
	if _, err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	rows, err := s.queries.ListUsersWithPostCount(ctx)
	if err != nil {
		return nil, storageError("list users", err)
	}

	users := make([]model.UserSummary, 0, len(rows))
	for _, row := range rows {
		users = append(users, model.UserSummary{
			User: model.User{
				ID:        row.ID,
				Email:     row.Email,
				Name:      row.Name,
				IsAdmin:   row.IsAdmin,
				CreatedAt: row.CreatedAt,
			},
			PostCount: row.PostCount,
		})
	}
	return users, nil
}

// SetAdmin grants or revokes admin access for targetID. An admin can never
// revoke their own access.
func (s *UserService) SetAdmin(ctx context.Context, caller identity.Identity, targetID int64, isAdmin bool) (model.User, error) {
	admin, err := s.policy.RequireAdmin(ctx, caller)
	if err != nil {
		return model.User{}, err
	}
	if targetID <= 0 {
		return model.User{}, validationError("userId", "userId must be a positive number")
	}
	if targetID == admin.ID && !isAdmin {
		return model.User{}, validationError("isAdmin", "You cannot remove admin access from yourself")
	}

	user, err := s.setAdmin(ctx, targetID, isAdmin, admin.ID)
	if err != nil {
		return model.User{}, err
	}

	slog.Info("admin access changed",
		"category", model.EventCategoryUser, "user_id", user.ID, "is_admin", isAdmin, "admin_id", admin.ID)
	return user, nil
}

// GrantAdmin flags an existing user as admin by email. It is meant for
// operators bootstrapping the first admin from the command line, so no
// caller identity is checked.
func (s *UserService) GrantAdmin(ctx context.Context, email string) (model.User, error) {
	email = model.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return model.User{}, validationError("email", "a valid email address is required")
	}

	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	if err != nil {
		return model.User{}, storageError("get user", err, "email", email)
	}
	if user.IsAdmin {
		return toUser(user), nil
	}

	// No actor: the grant comes from an operator, not a signed-in admin.
	return s.setAdmin(ctx, user.ID, true, 0)
}

func (s *UserService) setAdmin(ctx context.Context, targetID int64, isAdmin bool, actorID int64) (model.User, error) {
	action := model.AuditActionRevokeAdmin
	if isAdmin {
		action = model.AuditActionGrantAdmin
	}

	var updated store.User
	err := inTx(ctx, s.db, func(q *store.Queries) error {
		user, err := q.SetUserAdmin(ctx, store.SetUserAdminParams{IsAdmin: isAdmin, ID: targetID})
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user %d", ErrNotFound, targetID)
		}
		if err != nil {
			return err
		}

		if _, err := q.CreateModerationAudit(ctx, store.CreateModerationAuditParams{
			DecisionID: uuid.NewString(),
			ActorID:    util.NullInt64FromID(actorID),
			TargetKind: model.AuditTargetUser,
			TargetID:   user.ID,
			Action:     action,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}
	if err != nil {
		return model.User{}, storageError("set admin", err, "user_id", targetID)
	}

	s.metrics.ModerationDecision(model.AuditTargetUser, action)
	return toUser(updated), nil
}

// ensureUser looks up the user for id and creates it when missing. A lost
// race on the unique email is resolved by reading the winner's row.
func ensureUser(ctx context.Context, q *store.Queries, id identity.Identity) (store.User, error) {
	email := model.NormalizeEmail(id.Email)
	if email == "" {
		return store.User{}, ErrUnauthorized
	}

	user, err := q.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return store.User{}, storageError("get user", err, "email", email)
	}

	user, err = q.CreateUser(ctx, store.CreateUserParams{
		Email:     email,
		Name:      strings.TrimSpace(id.Name),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if existing, gerr := q.GetUserByEmail(ctx, email); gerr == nil {
			return existing, nil
		}
		return store.User{}, storageError("create user", err, "email", email)
	}

	slog.Info("user created on first sign-in", "category", model.EventCategoryUser, "user_id", user.ID)
	return user, nil
}

func toUser(u store.User) model.User {
	return model.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
