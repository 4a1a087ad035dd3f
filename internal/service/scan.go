// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/metrics"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/store"
)

// ScanService finds stored records that contain markup matching known
// attack patterns. It only reports; nothing is changed.
type ScanService struct {
	queries *store.Queries
	policy  *AccessPolicy
	metrics *metrics.Metrics
}

// NewScanService creates a new ScanService.
func NewScanService(db *sql.DB, policy *AccessPolicy) *ScanService {
	return &ScanService{queries: store.New(db), policy: policy}
}

// SetMetrics sets the metrics recorder.
func (s *ScanService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// ScanAs runs Scan on behalf of an admin caller.
func (s *ScanService) ScanAs(ctx context.Context, caller identity.Identity) (model.ScanReport, error) {
	if _, err := s.policy.RequireAdmin(ctx, caller); err != nil {
		return model.ScanReport{}, err
	}
	return s.Scan(ctx)
}

// Scan checks posts, testimonies and prayer points. Operators call it
// directly from the command line and the scheduler.
func (s *ScanService) Scan(ctx context.Context) (model.ScanReport, error) {
	var report model.ScanReport

	posts, err := s.queries.ListSuspiciousPosts(ctx)
	if err != nil {
		return model.ScanReport{}, storageError("scan posts", err)
	}
	report.Posts = make([]model.SuspiciousItem, 0, len(posts))
	for _, p := range posts {
		report.Posts = append(report.Posts, model.SuspiciousItem{
			ID:      p.ID,
			Label:   p.Title,
			Preview: model.Preview(p.Content),
		})
	}

	if report.Testimonies, err = s.scanSubmissions(ctx, store.TableTestimonies); err != nil {
		return model.ScanReport{}, err
	}
	if report.PrayerPoints, err = s.scanSubmissions(ctx, store.TablePrayerPoints); err != nil {
		return model.ScanReport{}, err
	}

	s.metrics.SuspiciousFound("posts", len(report.Posts))
	s.metrics.SuspiciousFound(string(store.TableTestimonies), len(report.Testimonies))
	s.metrics.SuspiciousFound(string(store.TablePrayerPoints), len(report.PrayerPoints))

	if report.Total() > 0 {
		slog.Warn("suspicious content found",
			"posts", len(report.Posts),
			"testimonies", len(report.Testimonies),
			"prayer_points", len(report.PrayerPoints))
	}
	return report, nil
}

func (s *ScanService) scanSubmissions(ctx context.Context, table store.SubmissionTable) ([]model.SuspiciousItem, error) {
	rows, err := s.queries.ListSuspiciousSubmissions(ctx, table)
	if err != nil {
		return nil, storageError("scan "+string(table), err)
	}

	items := make([]model.SuspiciousItem, 0, len(rows))
	for _, row := range rows {
		label := "Anonymous"
		if row.Name.Valid && row.Name.String != "" {
			label = row.Name.String
		}
		items = append(items, model.SuspiciousItem{
			ID:      row.ID,
			Label:   label,
			Preview: model.Preview(row.Body),
		})
	}
	return items, nil
}
