// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/service"
	"github.com/olegiv/koinonia/internal/util"
)

// AdminHandler serves user role management and the admin read endpoints.
type AdminHandler struct {
	users  *service.UserService
	audit  *service.AuditService
	events *service.EventService
	scan   *service.ScanService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *service.UserService, audit *service.AuditService, events *service.EventService, scan *service.ScanService) *AdminHandler {
	return &AdminHandler{users: users, audit: audit, events: events, scan: scan}
}

type setAdminRequest struct {
	UserID  *int64 `json:"userId"`
	IsAdmin *bool  `json:"isAdmin"`
}

const invalidSetAdminBody = "Invalid request body. userId (number) and isAdmin (boolean) are required."

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	users, err := h.users.ListUsers(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err, "Error fetching users")
		return
	}
	if users == nil {
		users = []model.UserSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// SetAdmin handles PUT /admin/users.
func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	var req setAdminRequest
	if err := decodeJSON(w, r, &req); err != nil || req.UserID == nil || req.IsAdmin == nil {
		writeMessage(w, http.StatusBadRequest, invalidSetAdminBody)
		return
	}

	user, err := h.users.SetAdmin(r.Context(), caller, *req.UserID, *req.IsAdmin)
	if err != nil {
		writeServiceError(w, err, "Error updating user")
		return
	}

	action := "revoked"
	if user.IsAdmin {
		action = "granted"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User " + action + " admin access successfully",
		"user":    user,
	})
}

// Audit handles GET /admin/audit.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	page, err := h.audit.List(r.Context(), caller, pageRequest(r, model.DefaultAdminLimit))
	if err != nil {
		writeServiceError(w, err, "Error fetching audit log")
		return
	}
	items := page.Items
	if items == nil {
		items = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": items, "pagination": page.Pagination})
}

// AuditForTarget handles GET /admin/audit/{targetKind}/{id}: the decision
// history of one submission or user.
func (h *AdminHandler) AuditForTarget(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	targetKind := chi.URLParam(r, "targetKind")
	if targetKind != model.AuditTargetUser && !model.Kind(targetKind).Valid() {
		writeMessage(w, http.StatusBadRequest, "Invalid target kind")
		return
	}
	targetID, ok := util.ParseInt64Positive(chi.URLParam(r, "id"))
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid target ID")
		return
	}

	entries, err := h.audit.ForTarget(r.Context(), caller, targetKind, targetID)
	if err != nil {
		writeServiceError(w, err, "Error fetching audit log")
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Events handles GET /admin/events.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	page, err := h.events.List(r.Context(), caller, pageRequest(r, model.DefaultAdminLimit))
	if err != nil {
		writeServiceError(w, err, "Error fetching events")
		return
	}
	items := page.Items
	if items == nil {
		items = []model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": items, "pagination": page.Pagination})
}

// Suspicious handles GET /admin/suspicious.
func (h *AdminHandler) Suspicious(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	report, err := h.scan.ScanAs(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err, "Error scanning content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report, "total": report.Total()})
}
