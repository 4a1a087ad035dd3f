// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the services and the
// HTTP layer: users, posts, moderated submissions, pagination, audit
// entries and event log constants.
package model

import (
	"strings"
	"time"
)

// User represents a community member. IsAdmin is the only privilege flag.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is a User with the number of posts they authored.
type UserSummary struct {
	User
	PostCount int64 `json:"postCount"`
}

// NormalizeEmail lowercases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
