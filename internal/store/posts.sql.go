// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createPost = `-- name: CreatePost :one
INSERT INTO posts (title, content, published, author_id, created_at)
VALUES (?, ?, 0, ?, ?)
RETURNING id, title, content, published, author_id, created_at
`

type CreatePostParams struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	row := q.db.QueryRowContext(ctx, createPost, arg.Title, arg.Content, arg.AuthorID, arg.CreatedAt)
	var i Post
	err := row.Scan(&i.ID, &i.Title, &i.Content, &i.Published, &i.AuthorID, &i.CreatedAt)
	return i, err
}

const getPostByID = `-- name: GetPostByID :one
SELECT id, title, content, published, author_id, created_at FROM posts WHERE id = ?
`

func (q *Queries) GetPostByID(ctx context.Context, id int64) (Post, error) {
	row := q.db.QueryRowContext(ctx, getPostByID, id)
	var i Post
	err := row.Scan(&i.ID, &i.Title, &i.Content, &i.Published, &i.AuthorID, &i.CreatedAt)
	return i, err
}

const getPostWithAuthor = `-- name: GetPostWithAuthor :one
SELECT p.id, p.title, p.content, p.published, p.author_id, p.created_at, u.name AS author_name
FROM posts p
JOIN users u ON u.id = p.author_id
WHERE p.id = ?
`

type PostWithAuthorRow struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Published  bool      `json:"published"`
	AuthorID   int64     `json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name"`
}

func (q *Queries) GetPostWithAuthor(ctx context.Context, id int64) (PostWithAuthorRow, error) {
	row := q.db.QueryRowContext(ctx, getPostWithAuthor, id)
	var i PostWithAuthorRow
	err := row.Scan(&i.ID, &i.Title, &i.Content, &i.Published, &i.AuthorID, &i.CreatedAt, &i.AuthorName)
	return i, err
}

const publishPost = `-- name: PublishPost :one
UPDATE posts SET published = 1 WHERE id = ?
RETURNING id, title, content, published, author_id, created_at
`

func (q *Queries) PublishPost(ctx context.Context, id int64) (Post, error) {
	row := q.db.QueryRowContext(ctx, publishPost, id)
	var i Post
	err := row.Scan(&i.ID, &i.Title, &i.Content, &i.Published, &i.AuthorID, &i.CreatedAt)
	return i, err
}

const deletePost = `-- name: DeletePost :execrows
DELETE FROM posts WHERE id = ?
`

func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listDraftsByAuthor = `-- name: ListDraftsByAuthor :many
SELECT id, title, content, published, author_id, created_at
FROM posts
WHERE author_id = ? AND published = 0
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListDraftsByAuthor(ctx context.Context, authorID int64) ([]Post, error) {
	return q.listPosts(ctx, listDraftsByAuthor, authorID)
}

const listPublishedFeed = `-- name: ListPublishedFeed :many
SELECT p.id, p.title, p.content, p.published, p.author_id, p.created_at, u.name AS author_name
FROM posts p
JOIN users u ON u.id = p.author_id
WHERE p.published = 1
ORDER BY p.created_at DESC, p.id DESC
LIMIT ?
`

func (q *Queries) ListPublishedFeed(ctx context.Context, limit int64) ([]PostWithAuthorRow, error) {
	rows, err := q.db.QueryContext(ctx, listPublishedFeed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PostWithAuthorRow
	for rows.Next() {
		var i PostWithAuthorRow
		if err := rows.Scan(&i.ID, &i.Title, &i.Content, &i.Published, &i.AuthorID, &i.CreatedAt, &i.AuthorName); err != nil {
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

const listSuspiciousPosts = `-- name: ListSuspiciousPosts :many
SELECT id, title, content, published, author_id, created_at
FROM posts
WHERE instr(lower(content), '<script') > 0
   OR instr(lower(content), 'javascript:') > 0
   OR instr(lower(content), 'onclick=') > 0
   OR instr(lower(content), 'onerror=') > 0
   OR instr(lower(content), '<iframe') > 0
   OR instr(lower(content), 'data:text/html') > 0
   OR instr(lower(title), '<script') > 0
ORDER BY id
`

func (q *Queries) ListSuspiciousPosts(ctx context.Context) ([]Post, error) {
	return q.listPosts(ctx, listSuspiciousPosts)
}

func (q *Queries) listPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	defer rows.Close()
	var items []Post
	for rows.Next() {
		var i Post
		if err := rows.Scan(&i.ID, &i.Title, &i.Content, &i.Published, &i.AuthorID, &i.CreatedAt); err != nil {
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
