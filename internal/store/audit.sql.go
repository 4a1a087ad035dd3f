// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createModerationAudit = `-- name: CreateModerationAudit :one
INSERT INTO moderation_audit (decision_id, actor_id, target_kind, target_id, action, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, decision_id, actor_id, target_kind, target_id, action, created_at
`

type CreateModerationAuditParams struct {
	DecisionID string        `json:"decision_id"`
	ActorID    sql.NullInt64 `json:"actor_id"`
	TargetKind string        `json:"target_kind"`
	TargetID   int64         `json:"target_id"`
	Action     string        `json:"action"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (q *Queries) CreateModerationAudit(ctx context.Context, arg CreateModerationAuditParams) (ModerationAudit, error) {
	row := q.db.QueryRowContext(ctx, createModerationAudit,
		arg.DecisionID, arg.ActorID, arg.TargetKind, arg.TargetID, arg.Action, arg.CreatedAt)
	var i ModerationAudit
	err := row.Scan(&i.ID, &i.DecisionID, &i.ActorID, &i.TargetKind, &i.TargetID, &i.Action, &i.CreatedAt)
	return i, err
}

const listModerationAudit = `-- name: ListModerationAudit :many
SELECT id, decision_id, actor_id, target_kind, target_id, action, created_at
FROM moderation_audit
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

type ListModerationAuditParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListModerationAudit(ctx context.Context, arg ListModerationAuditParams) ([]ModerationAudit, error) {
	rows, err := q.db.QueryContext(ctx, listModerationAudit, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ModerationAudit
	for rows.Next() {
		var i ModerationAudit
		if err := rows.Scan(&i.ID, &i.DecisionID, &i.ActorID, &i.TargetKind, &i.TargetID, &i.Action, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countModerationAudit = `-- name: CountModerationAudit :one
SELECT COUNT(*) FROM moderation_audit
`

func (q *Queries) CountModerationAudit(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countModerationAudit).Scan(&count)
	return count, err
}

const listAuditForTarget = `-- name: ListAuditForTarget :many
SELECT id, decision_id, actor_id, target_kind, target_id, action, created_at
FROM moderation_audit
WHERE target_kind = ? AND target_id = ?
ORDER BY created_at DESC, id DESC
`

type ListAuditForTargetParams struct {
	TargetKind string `json:"target_kind"`
	TargetID   int64  `json:"target_id"`
}

func (q *Queries) ListAuditForTarget(ctx context.Context, arg ListAuditForTargetParams) ([]ModerationAudit, error) {
	rows, err := q.db.QueryContext(ctx, listAuditForTarget, arg.TargetKind, arg.TargetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ModerationAudit
	for rows.Next() {
		var i ModerationAudit
		if err := rows.Scan(&i.ID, &i.DecisionID, &i.ActorID, &i.TargetKind, &i.TargetID, &i.Action, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
