// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/koinonia/internal/metrics"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/sanitize"
	"github.com/olegiv/koinonia/internal/store"
	"github.com/olegiv/koinonia/internal/util"
)

// MaxSubmissionLength is the longest accepted submission body, in runes.
const MaxSubmissionLength = 10000

// SubmitInput is a public testimony or prayer point submission.
type SubmitInput struct {
	Body  string
	Name  string
	Email string
}

// SubmissionService accepts anonymous submissions. New rows always start
// pending.
type SubmissionService struct {
	queries *store.Queries
	metrics *metrics.Metrics
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(db *sql.DB) *SubmissionService {
	return &SubmissionService{queries: store.New(db)}
}

// SetMetrics sets the metrics recorder.
func (s *SubmissionService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Submit validates, sanitizes and stores a new pending submission and
// returns its id.
func (s *SubmissionService) Submit(ctx context.Context, kind model.Kind, in SubmitInput) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return 0, validationError(kind.BodyField(), kind.Label()+" is required")
	}
	if utf8.RuneCountInString(body) > MaxSubmissionLength {
		return 0, validationError(kind.BodyField(),
			fmt.Sprintf("%s must be at most %d characters", kind.Label(), MaxSubmissionLength))
	}

	stripped := sanitize.Changed(body)
	// Markup-only bodies are empty once stripped.
	body = strings.TrimSpace(sanitize.Sanitize(body))
	if body == "" {
		return 0, validationError(kind.BodyField(), kind.Label()+" is required")
	}

	row, err := s.queries.CreateSubmission(ctx, table, store.CreateSubmissionParams{
		Body:      body,
		Name:      util.NullStringFromTrimmed(sanitize.Sanitize(in.Name)),
		Email:     util.NullStringFromTrimmed(in.Email),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return 0, storageError("create "+string(kind), err, "kind", kind)
	}

	if stripped {
		slog.Warn("dangerous markup removed from submission",
			"category", model.EventCategoryModeration, "kind", kind, "id", row.ID)
	}
	s.metrics.SubmissionAccepted(string(kind))
	return row.ID, nil
}

func tableFor(kind model.Kind) (store.SubmissionTable, error) {
	switch kind {
	case model.KindTestimony:
		return store.TableTestimonies, nil
	case model.KindPrayerPoint:
		return store.TablePrayerPoints, nil
	default:
		return "", validationError("kind", fmt.Sprintf("unknown submission kind %q", kind))
	}
}

func toSubmission(kind model.Kind, row store.Submission) model.Submission {
	return model.Submission{
		Kind:      kind,
		ID:        row.ID,
		Body:      row.Body,
		Name:      util.PtrFromNullString(row.Name),
		Email:     util.PtrFromNullString(row.Email),
		Approved:  row.Approved,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
	}
}

func toSubmissions(kind model.Kind, rows []store.Submission) []model.Submission {
	items := make([]model.Submission, 0, len(rows))
	for _, row := range rows {
		items = append(items, toSubmission(kind, row))
	}
	return items
}
