// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SubmissionTable names one of the two moderated submission tables.
// Both share the same columns, so every submission query is written once
// against a {table} placeholder.
type SubmissionTable string

const (
	TableTestimonies  SubmissionTable = "testimonies"
	TablePrayerPoints SubmissionTable = "prayer_points"
)

// Valid reports whether t is a known submission table.
func (t SubmissionTable) Valid() bool {
	return t == TableTestimonies || t == TablePrayerPoints
}

func (t SubmissionTable) query(q string) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("unknown submission table %q", string(t))
	}
	return strings.ReplaceAll(q, "{table}", string(t)), nil
}

const submissionColumns = "id, body, name, email, approved, version, created_at"

const createSubmission = `-- name: CreateSubmission :one
INSERT INTO {table} (body, name, email, approved, version, created_at)
VALUES (?, ?, ?, 0, 1, ?)
RETURNING ` + submissionColumns

type CreateSubmissionParams struct {
	Body      string         `json:"body"`
	Name      sql.NullString `json:"name"`
	Email     sql.NullString `json:"email"`
	CreatedAt time.Time      `json:"created_at"`
}

func (q *Queries) CreateSubmission(ctx context.Context, table SubmissionTable, arg CreateSubmissionParams) (Submission, error) {
	query, err := table.query(createSubmission)
	if err != nil {
		return Submission{}, err
	}
	row := q.db.QueryRowContext(ctx, query, arg.Body, arg.Name, arg.Email, arg.CreatedAt)
	return scanSubmission(row)
}

const getSubmission = `-- name: GetSubmission :one
SELECT ` + submissionColumns + ` FROM {table} WHERE id = ?
`

func (q *Queries) GetSubmission(ctx context.Context, table SubmissionTable, id int64) (Submission, error) {
	query, err := table.query(getSubmission)
	if err != nil {
		return Submission{}, err
	}
	return scanSubmission(q.db.QueryRowContext(ctx, query, id))
}

const listSubmissionsByApproval = `-- name: ListSubmissionsByApproval :many
SELECT ` + submissionColumns + `
FROM {table}
WHERE approved = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

type ListSubmissionsByApprovalParams struct {
	Approved bool  `json:"approved"`
	Limit    int64 `json:"limit"`
	Offset   int64 `json:"offset"`
}

func (q *Queries) ListSubmissionsByApproval(ctx context.Context, table SubmissionTable, arg ListSubmissionsByApprovalParams) ([]Submission, error) {
	query, err := table.query(listSubmissionsByApproval)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, arg.Approved, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanSubmissions(rows)
}

const countSubmissionsByApproval = `-- name: CountSubmissionsByApproval :one
SELECT COUNT(*) FROM {table} WHERE approved = ?
`

func (q *Queries) CountSubmissionsByApproval(ctx context.Context, table SubmissionTable, approved bool) (int64, error) {
	query, err := table.query(countSubmissionsByApproval)
	if err != nil {
		return 0, err
	}
	var count int64
	err = q.db.QueryRowContext(ctx, query, approved).Scan(&count)
	return count, err
}

const listAllSubmissions = `-- name: ListAllSubmissions :many
SELECT ` + submissionColumns + `
FROM {table}
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

type ListAllSubmissionsParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListAllSubmissions(ctx context.Context, table SubmissionTable, arg ListAllSubmissionsParams) ([]Submission, error) {
	query, err := table.query(listAllSubmissions)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanSubmissions(rows)
}

const countAllSubmissions = `-- name: CountAllSubmissions :one
SELECT COUNT(*) FROM {table}
`

func (q *Queries) CountAllSubmissions(ctx context.Context, table SubmissionTable) (int64, error) {
	query, err := table.query(countAllSubmissions)
	if err != nil {
		return 0, err
	}
	var count int64
	err = q.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

const setSubmissionApproval = `-- name: SetSubmissionApproval :one
UPDATE {table}
SET approved = ?, version = version + 1
WHERE id = ? AND (? = 0 OR version = ?)
RETURNING ` + submissionColumns

type SetSubmissionApprovalParams struct {
	Approved bool  `json:"approved"`
	ID       int64 `json:"id"`
	// ExpectedVersion, when non-zero, makes the update a compare-and-swap
	// on the version column.
	ExpectedVersion int64 `json:"expected_version"`
}

// SetSubmissionApproval returns sql.ErrNoRows when the row is missing or
// its version does not match ExpectedVersion.
func (q *Queries) SetSubmissionApproval(ctx context.Context, table SubmissionTable, arg SetSubmissionApprovalParams) (Submission, error) {
	query, err := table.query(setSubmissionApproval)
	if err != nil {
		return Submission{}, err
	}
	row := q.db.QueryRowContext(ctx, query, arg.Approved, arg.ID, arg.ExpectedVersion, arg.ExpectedVersion)
	return scanSubmission(row)
}

const listSuspiciousSubmissions = `-- name: ListSuspiciousSubmissions :many
SELECT ` + submissionColumns + `
FROM {table}
WHERE instr(lower(body), '<script') > 0
   OR instr(lower(body), 'javascript:') > 0
   OR instr(lower(body), 'onclick=') > 0
   OR instr(lower(body), 'onerror=') > 0
   OR instr(lower(body), '<iframe') > 0
   OR instr(lower(body), 'data:text/html') > 0
ORDER BY id
`

func (q *Queries) ListSuspiciousSubmissions(ctx context.Context, table SubmissionTable) ([]Submission, error) {
	query, err := table.query(listSuspiciousSubmissions)
	if err != nil {
		return nil, err
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanSubmissions(rows)
}

func scanSubmission(row *sql.Row) (Submission, error) {
	var i Submission
	err := row.Scan(&i.ID, &i.Body, &i.Name, &i.Email, &i.Approved, &i.Version, &i.CreatedAt)
	return i, err
}

func scanSubmissions(rows *sql.Rows) ([]Submission, error) {
	defer rows.Close()
	var items []Submission
	for rows.Next() {
		var i Submission
		if err := rows.Scan(&i.ID, &i.Body, &i.Name, &i.Email, &i.Approved, &i.Version, &i.CreatedAt); err != nil {
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
