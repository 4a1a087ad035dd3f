// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"time"

	"github.com/olegiv/koinonia/internal/service"
)

// Job names
const (
	JobPurgeEvents = "purge-events"
	JobScanContent = "scan-content"
)

// PurgeEventsJob deletes event log entries older than retention.
func PurgeEventsJob(events *service.EventService, schedule string, retention time.Duration) Job {
	return Job{
		Name:        JobPurgeEvents,
		Description: "Delete old event log entries",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			_, err := events.DeleteOldEvents(ctx, retention)
			return err
		},
	}
}

// ScanContentJob runs the suspicious content scan. Findings are logged as
// a warning by the scan itself; nothing is modified.
func ScanContentJob(scan *service.ScanService, schedule string) Job {
	return Job{
		Name:        JobScanContent,
		Description: "Report posts and submissions with script-like content",
		Schedule:    schedule,
		Run: func(ctx context.Context) error {
			_, err := scan.Scan(ctx)
			return err
		},
	}
}
