// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// EnsureAdmins makes sure every address in emails belongs to an admin user.
// Missing users are created with an empty display name; they pick up their
// name on first sign-in. Existing users are promoted if needed.
func EnsureAdmins(ctx context.Context, db *sql.DB, emails []string) error {
	queries := New(db)

	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			continue
		}

		user, err := queries.GetUserByEmail(ctx, email)
		if errors.Is(err, sql.ErrNoRows) {
			user, err = queries.CreateUser(ctx, CreateUserParams{
				Email:     email,
				IsAdmin:   true,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				return fmt.Errorf("creating admin user %s: %w", email, err)
			}
			slog.Info("created bootstrap admin user", "id", user.ID, "email", user.Email)
			continue
		}
		if err != nil {
			return fmt.Errorf("looking up admin user %s: %w", email, err)
		}

		if user.IsAdmin {
			continue
		}
		if _, err := queries.SetUserAdmin(ctx, SetUserAdminParams{IsAdmin: true, ID: user.ID}); err != nil {
			return fmt.Errorf("promoting admin user %s: %w", email, err)
		}
		slog.Info("promoted bootstrap admin user", "id", user.ID, "email", user.Email)
	}

	return nil
}
