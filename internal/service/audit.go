// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/store"
	"github.com/olegiv/koinonia/internal/util"
)

// AuditService reads the moderation decision log.
type AuditService struct {
	queries *store.Queries
	policy  *AccessPolicy
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB, policy *AccessPolicy) *AuditService {
	return &AuditService{queries: store.New(db), policy: policy}
}

// List returns one page of decisions, newest first.
func (s *AuditService) List(ctx context.Context, caller identity.Identity, req model.PageRequest) (model.Page[model.AuditEntry], error) {
	if _, err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return model.Page[model.AuditEntry]{}, err
	}

	rows, err := s.queries.ListModerationAudit(ctx, store.ListModerationAuditParams{
		Limit:  int64(req.Limit),
		Offset: int64(req.Offset()),
	})
	if err != nil {
		return model.Page[model.AuditEntry]{}, storageError("list audit", err)
	}
	total, err := s.queries.CountModerationAudit(ctx)
	if err != nil {
		return model.Page[model.AuditEntry]{}, storageError("count audit", err)
	}

	return model.Page[model.AuditEntry]{Items: toAuditEntries(rows), Pagination: req.Paginate(total)}, nil
}

// ForTarget returns every decision on one record, newest first.
func (s *AuditService) ForTarget(ctx context.Context, caller identity.Identity, targetKind string, targetID int64) ([]model.AuditEntry, error) {
	if _, err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	rows, err := s.queries.ListAuditForTarget(ctx, store.ListAuditForTargetParams{
		TargetKind: targetKind,
		TargetID:   targetID,
	})
	if err != nil {
		return nil, storageError("list audit for target", err, "target_kind", targetKind, "target_id", targetID)
	}
	return toAuditEntries(rows), nil
}

func toAuditEntries(rows []store.ModerationAudit) []model.AuditEntry {
	entries := make([]model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.AuditEntry{
			ID:         row.ID,
			DecisionID: row.DecisionID,
			ActorID:    util.PtrFromNullInt64(row.ActorID),
			TargetKind: row.TargetKind,
			TargetID:   row.TargetID,
			Action:     row.Action,
			CreatedAt:  row.CreatedAt,
		})
	}
	return entries
}
