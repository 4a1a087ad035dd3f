// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/koinonia/internal/cache"
	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/metrics"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/sanitize"
	"github.com/olegiv/koinonia/internal/store"
)

// ApprovalInput is an admin decision on one submission. A zero Version
// skips the concurrency check.
type ApprovalInput struct {
	ID       int64
	Approved bool
	Version  int64
}

// cachedListing is the cached form of one approved listing page.
type cachedListing struct {
	Items []store.Submission `json:"items"`
	Total int64              `json:"total"`
}

// ModerationService lists submissions and records admin approval
// decisions. Approved listings are public; everything else goes through
// the AccessPolicy.
type ModerationService struct {
	db       *sql.DB
	queries  *store.Queries
	policy   *AccessPolicy
	listings *cache.TypedCache[cachedListing]
	metrics  *metrics.Metrics
}

// NewModerationService creates a new ModerationService.
func NewModerationService(db *sql.DB, policy *AccessPolicy) *ModerationService {
	return &ModerationService{
		db:      db,
		queries: store.New(db),
		policy:  policy,
	}
}

// SetCache enables caching of approved listings.
func (s *ModerationService) SetCache(c cache.Cache, ttl time.Duration) {
	s.listings = cache.NewTypedCache[cachedListing](c, ttl)
}

// SetMetrics sets the metrics recorder.
func (s *ModerationService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// ListApproved returns one page of approved submissions, newest first.
// Items carry rendered HTML and never include the submitter's email.
func (s *ModerationService) ListApproved(ctx context.Context, kind model.Kind, req model.PageRequest) (model.Page[model.Submission], error) {
	table, err := tableFor(kind)
	if err != nil {
		return model.Page[model.Submission]{}, err
	}

	load := func() (cachedListing, error) {
		rows, err := s.queries.ListSubmissionsByApproval(ctx, table, store.ListSubmissionsByApprovalParams{
			Approved: true,
			Limit:    int64(req.Limit),
			Offset:   int64(req.Offset()),
		})
		if err != nil {
			return cachedListing{}, err
		}
		total, err := s.queries.CountSubmissionsByApproval(ctx, table, true)
		if err != nil {
			return cachedListing{}, err
		}
		return cachedListing{Items: rows, Total: total}, nil
	}

	var listing cachedListing
	if s.listings != nil {
		listing, err = s.listings.GetOrSet(ctx, listingKey(kind, req), load)
	} else {
		listing, err = load()
	}
	if err != nil {
		return model.Page[model.Submission]{}, storageError("list approved "+string(kind), err, "kind", kind)
	}

	items := make([]model.Submission, 0, len(listing.Items))
	for _, row := range listing.Items {
		item := toSubmission(kind, row).Public()
		item.HTML = sanitize.EscapeAndLightMarkup(item.Body)
		items = append(items, item)
	}

	return model.Page[model.Submission]{Items: items, Pagination: req.Paginate(listing.Total)}, nil
}

// ListPending returns one page of submissions awaiting approval.
func (s *ModerationService) ListPending(ctx context.Context, caller identity.Identity, kind model.Kind, req model.PageRequest) (model.Page[model.Submission], error) {
	if _, err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return model.Page[model.Submission]{}, err
	}
	table, err := tableFor(kind)
	if err != nil {
		return model.Page[model.Submission]{}, err
	}

	rows, err := s.queries.ListSubmissionsByApproval(ctx, table, store.ListSubmissionsByApprovalParams{
		Approved: false,
		Limit:    int64(req.Limit),
		Offset:   int64(req.Offset()),
	})
	if err != nil {
		return model.Page[model.Submission]{}, storageError("list pending "+string(kind), err, "kind", kind)
	}
	total, err := s.queries.CountSubmissionsByApproval(ctx, table, false)
	if err != nil {
		return model.Page[model.Submission]{}, storageError("count pending "+string(kind), err, "kind", kind)
	}

	return model.Page[model.Submission]{Items: toSubmissions(kind, rows), Pagination: req.Paginate(total)}, nil
}

// ListAll returns one page of submissions in both states.
func (s *ModerationService) ListAll(ctx context.Context, caller identity.Identity, kind model.Kind, req model.PageRequest) (model.Page[model.Submission], error) {
	if _, err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return model.Page[model.Submission]{}, err
	}
	table, err := tableFor(kind)
	if err != nil {
		return model.Page[model.Submission]{}, err
	}

	rows, err := s.queries.ListAllSubmissions(ctx, table, store.ListAllSubmissionsParams{
		Limit:  int64(req.Limit),
		Offset: int64(req.Offset()),
	})
	if err != nil {
		return model.Page[model.Submission]{}, storageError("list "+string(kind), err, "kind", kind)
	}
	total, err := s.queries.CountAllSubmissions(ctx, table)
	if err != nil {
		return model.Page[model.Submission]{}, storageError("count "+string(kind), err, "kind", kind)
	}

	return model.Page[model.Submission]{Items: toSubmissions(kind, rows), Pagination: req.Paginate(total)}, nil
}

// SetApproval sets the approval flag of one submission and appends an
// audit entry in the same transaction. Setting the current value again is
// allowed and still audited.
func (s *ModerationService) SetApproval(ctx context.Context, caller identity.Identity, kind model.Kind, in ApprovalInput) (model.Submission, error) {
	admin, err := s.policy.RequireAdmin(ctx, caller)
	if err != nil {
		return model.Submission{}, err
	}
	table, err := tableFor(kind)
	if err != nil {
		return model.Submission{}, err
	}
	if in.ID <= 0 {
		return model.Submission{}, validationError("id", "id must be a positive number")
	}
	if in.Version < 0 {
		return model.Submission{}, validationError("version", "version must not be negative")
	}

	action := model.ApprovalAction(in.Approved)
	var updated store.Submission
	err = inTx(ctx, s.db, func(q *store.Queries) error {
		row, err := q.SetSubmissionApproval(ctx, table, store.SetSubmissionApprovalParams{
			Approved:        in.Approved,
			ID:              in.ID,
			ExpectedVersion: in.Version,
		})
		if errors.Is(err, sql.ErrNoRows) {
			// Missing row and stale version look the same to the update.
			_, gerr := q.GetSubmission(ctx, table, in.ID)
			switch {
			case errors.Is(gerr, sql.ErrNoRows):
				return fmt.Errorf("%w: %s %d", ErrNotFound, kind, in.ID)
			case gerr != nil:
				return gerr
			}
			return ErrStaleVersion
		}
		if err != nil {
			return err
		}

		if _, err := q.CreateModerationAudit(ctx, store.CreateModerationAuditParams{
			DecisionID: uuid.NewString(),
			ActorID:    sql.NullInt64{Int64: admin.ID, Valid: true},
			TargetKind: string(kind),
			TargetID:   row.ID,
			Action:     action,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}

		updated = row
		return nil
	})
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return model.Submission{}, err
	case err != nil:
		return model.Submission{}, storageError("set approval "+string(kind), err, "kind", kind, "id", in.ID)
	}

	s.invalidateListings(ctx, kind)
	s.metrics.ModerationDecision(string(kind), action)
	slog.Info("submission moderated",
		"kind", kind, "id", updated.ID, "action", action, "admin_id", admin.ID)

	return toSubmission(kind, updated), nil
}

func (s *ModerationService) invalidateListings(ctx context.Context, kind model.Kind) {
	if s.listings == nil {
		return
	}
	if err := s.listings.Invalidate(ctx, listingPrefix(kind)); err != nil {
		slog.Warn("cache invalidation failed", "kind", kind, "error", err)
	}
}

func listingPrefix(kind model.Kind) string {
	return "listing:" + string(kind) + ":"
}

func listingKey(kind model.Kind, req model.PageRequest) string {
	return fmt.Sprintf("%sapproved:%d:%d", listingPrefix(kind), req.Page, req.Limit)
}
