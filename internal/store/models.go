// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission is a row of either the testimonies or the prayer_points table.
type Submission struct {
	ID        int64          `json:"id"`
	Body      string         `json:"body"`
	Name      sql.NullString `json:"name"`
	Email     sql.NullString `json:"email"`
	Approved  bool           `json:"approved"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
}

type ModerationAudit struct {
	ID         int64         `json:"id"`
	DecisionID string        `json:"decision_id"`
	ActorID    sql.NullInt64 `json:"actor_id"`
	TargetKind string        `json:"target_kind"`
	TargetID   int64         `json:"target_id"`
	Action     string        `json:"action"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
