// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/scheduler"
)

func newTestScheduler(t *testing.T, runs *int) *scheduler.Scheduler {
	t.Helper()

	s := scheduler.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	jobs := []scheduler.Job{
		{Name: "count", Description: "Counts runs", Schedule: "@daily", Run: func(context.Context) error {
			*runs++
			return nil
		}},
		{Name: "broken", Schedule: "@hourly", Run: func(context.Context) error {
			return errors.New("boom")
		}},
	}
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			t.Fatalf("Add(%s): %v", job.Name, err)
		}
	}
	return s
}

func TestJobsList(t *testing.T) {
	runs := 0
	h := NewJobsHandler(newTestScheduler(t, &runs).Registry())
	admin := identity.Identity{Email: "admin@example.com"}

	rr := httptest.NewRecorder()
	h.List(rr, newRequest(t, http.MethodGet, "/admin/jobs", nil, &admin))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	jobs := decodeBody(t, rr)["jobs"].([]any)
	if len(jobs) != 2 {
		t.Fatalf("jobs = %v, want 2", jobs)
	}
	first := jobs[0].(map[string]any)
	if first["name"] != "broken" || first["schedule"] != "@hourly" {
		t.Errorf("first job = %v, want broken @hourly", first)
	}
}

func TestJobsTriggerNow(t *testing.T) {
	runs := 0
	h := NewJobsHandler(newTestScheduler(t, &runs).Registry())
	admin := identity.Identity{Email: "admin@example.com"}

	t.Run("runs the job", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.TriggerNow(rr, newRequest(t, http.MethodPost, "/admin/jobs/count/run", nil, &admin, "name", "count"))
		assertStatusMessage(t, rr, http.StatusOK, "Job count ran successfully")
		if runs != 1 {
			t.Errorf("runs = %d, want 1", runs)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.TriggerNow(rr, newRequest(t, http.MethodPost, "/admin/jobs/nope/run", nil, &admin, "name", "nope"))
		assertStatusMessage(t, rr, http.StatusNotFound, "Job not found")
	})

	t.Run("failing job", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.TriggerNow(rr, newRequest(t, http.MethodPost, "/admin/jobs/broken/run", nil, &admin, "name", "broken"))
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rr.Code)
		}
		if got := decodeBody(t, rr)["error"]; got != "Job broken failed" {
			t.Errorf("error = %v", got)
		}
	})
}
