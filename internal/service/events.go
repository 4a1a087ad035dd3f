// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the application's business rules: public
// submissions, moderation, post authorship, admin role management and
// housekeeping. Services return the error classes in errors.go and never
// expose storage details to callers.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/store"
)

// EventService reads and prunes the persisted event log.
type EventService struct {
	queries *store.Queries
	policy  *AccessPolicy
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, policy *AccessPolicy) *EventService {
	return &EventService{
		queries: store.New(db),
		policy:  policy,
	}
}

// List returns one page of events, newest first.
func (s *EventService) List(ctx context.Context, caller identity.Identity, req model.PageRequest) (model.Page[model.Event], error) {
	if _, err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return model.Page[model.Event]{}, err
	}

	rows, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Limit:  int64(req.Limit),
		Offset: int64(req.Offset()),
	})
	if err != nil {
		return model.Page[model.Event]{}, storageError("list events", err)
	}
	total, err := s.queries.CountEvents(ctx)
	if err != nil {
		return model.Page[model.Event]{}, storageError("count events", err)
	}

	events := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, model.Event{
			ID:        row.ID,
			Level:     row.Level,
			Category:  row.Category,
			Message:   row.Message,
			Metadata:  row.Metadata,
			CreatedAt: row.CreatedAt,
		})
	}
	return model.Page[model.Event]{Items: events, Pagination: req.Paginate(total)}, nil
}

// DeleteOldEvents removes events older than retention and returns how many
// were deleted.
func (s *EventService) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	n, err := s.queries.DeleteOldEvents(ctx, cutoff)
	if err != nil {
		return 0, storageError("delete old events", err)
	}
	if n > 0 {
		slog.Info("old events purged", "category", model.EventCategoryScheduler, "deleted", n, "cutoff", cutoff)
	}
	return n, nil
}
