// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (email, name, is_admin, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, email, name, is_admin, created_at
`

type CreateUserParams struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Email, arg.Name, arg.IsAdmin, arg.CreatedAt)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.IsAdmin, &i.CreatedAt)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, name, is_admin, created_at FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.IsAdmin, &i.CreatedAt)
	return i, err
}

const getUserByID = `-- name: GetUserByID :one
SELECT id, email, name, is_admin, created_at FROM users WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.IsAdmin, &i.CreatedAt)
	return i, err
}

const listUsersWithPostCount = `-- name: ListUsersWithPostCount :many
SELECT u.id, u.email, u.name, u.is_admin, u.created_at, COUNT(p.id) AS post_count
FROM users u
LEFT JOIN posts p ON p.author_id = u.id
GROUP BY u.id
ORDER BY u.created_at DESC, u.id DESC
`

type ListUsersWithPostCountRow struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	PostCount int64     `json:"post_count"`
}

func (q *Queries) ListUsersWithPostCount(ctx context.Context) ([]ListUsersWithPostCountRow, error) {
	rows, err := q.db.QueryContext(ctx, listUsersWithPostCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListUsersWithPostCountRow
	for rows.Next() {
		var i ListUsersWithPostCountRow
		if err := rows.Scan(&i.ID, &i.Email, &i.Name, &i.IsAdmin, &i.CreatedAt, &i.PostCount); err != nil {
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

const setUserAdmin = `-- name: SetUserAdmin :one
UPDATE users SET is_admin = ? WHERE id = ?
RETURNING id, email, name, is_admin, created_at
`

type SetUserAdminParams struct {
	IsAdmin bool  `json:"is_admin"`
	ID      int64 `json:"id"`
}

func (q *Queries) SetUserAdmin(ctx context.Context, arg SetUserAdminParams) (User, error) {
	row := q.db.QueryRowContext(ctx, setUserAdmin, arg.IsAdmin, arg.ID)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.IsAdmin, &i.CreatedAt)
	return i, err
}

const countAdmins = `-- name: CountAdmins :one
SELECT COUNT(*) FROM users WHERE is_admin = 1
`

func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAdmins)
	var count int64
	err := row.Scan(&count)
	return count, err
}
