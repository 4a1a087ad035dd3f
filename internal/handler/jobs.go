// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/scheduler"
)

// JobRegistry lists scheduled jobs and runs them on demand.
type JobRegistry interface {
	List() []scheduler.JobInfo
	TriggerNow(name string) error
}

// JobsHandler exposes the housekeeping scheduler to admins. Routes using it
// must sit behind middleware.RequireAdmin.
type JobsHandler struct {
	registry JobRegistry
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(registry JobRegistry) *JobsHandler {
	return &JobsHandler{registry: registry}
}

// List handles GET /admin/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": h.registry.List()})
}

// TriggerNow handles POST /admin/jobs/{name}/run. The job runs before the
// response is written.
func (h *JobsHandler) TriggerNow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	caller, _ := identity.FromContext(r.Context())

	err := h.registry.TriggerNow(name)
	if errors.Is(err, scheduler.ErrJobNotFound) {
		writeMessage(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		slog.Error("failed to trigger job", "error", err, "name", name, "category", "scheduler")
		writeServerError(w, "Job "+name+" failed")
		return
	}

	slog.Info("scheduler job triggered", "name", name, "triggered_by", caller.Email, "category", "scheduler")
	writeMessage(w, http.StatusOK, "Job "+name+" ran successfully")
}
