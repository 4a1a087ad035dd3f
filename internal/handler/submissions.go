// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/service"
)

// SubmissionsHandler serves one moderated collection, testimonies or
// prayer points. The two collections share every route shape and differ
// only in their JSON field names.
type SubmissionsHandler struct {
	kind       model.Kind
	submit     *service.SubmissionService
	moderation *service.ModerationService
}

// NewSubmissionsHandler creates a handler for kind.
func NewSubmissionsHandler(kind model.Kind, submit *service.SubmissionService, moderation *service.ModerationService) *SubmissionsHandler {
	return &SubmissionsHandler{kind: kind, submit: submit, moderation: moderation}
}

type submitRequest struct {
	Testimony   *string `json:"testimony"`
	PrayerPoint *string `json:"prayerPoint"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
}

func (req submitRequest) body(kind model.Kind) string {
	p := req.Testimony
	if kind == model.KindPrayerPoint {
		p = req.PrayerPoint
	}
	if p == nil {
		return ""
	}
	return *p
}

type approveRequest struct {
	ID       *int64 `json:"id"`
	Approved *bool  `json:"approved"`
	Version  *int64 `json:"version"`
}

const invalidApproveBody = "Invalid request body. id (number) and approved (boolean) are required."

// Submit handles POST /{kind}.
func (h *SubmissionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, h.kind.Label()+" is required")
		return
	}

	in := service.SubmitInput{Body: req.body(h.kind)}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Email != nil {
		in.Email = *req.Email
	}

	id, err := h.submit.Submit(r.Context(), h.kind, in)
	if err != nil {
		writeServiceError(w, err, "Error submitting "+lowerLabel(h.kind))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": h.kind.Label() + " submitted successfully",
		"id":      id,
	})
}

// Approved handles GET /{kind}/approved.
func (h *SubmissionsHandler) Approved(w http.ResponseWriter, r *http.Request) {
	page, err := h.moderation.ListApproved(r.Context(), h.kind, pageRequest(r, model.DefaultPublicLimit))
	if err != nil {
		writeServiceError(w, err, "Error fetching approved "+h.kind.Plural())
		return
	}
	h.writePage(w, page)
}

// Pending handles GET /{kind}/pending.
func (h *SubmissionsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	page, err := h.moderation.ListPending(r.Context(), caller, h.kind, pageRequest(r, model.DefaultAdminLimit))
	if err != nil {
		writeServiceError(w, err, "Error fetching pending "+h.kind.Plural())
		return
	}
	h.writePage(w, page)
}

// List handles GET /{kind}/list.
func (h *SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	page, err := h.moderation.ListAll(r.Context(), caller, h.kind, pageRequest(r, model.DefaultAdminLimit))
	if err != nil {
		writeServiceError(w, err, "Error fetching "+h.kind.Plural())
		return
	}
	h.writePage(w, page)
}

// Approve handles PUT /{kind}/approve.
func (h *SubmissionsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())

	var req approveRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ID == nil || req.Approved == nil {
		writeMessage(w, http.StatusBadRequest, invalidApproveBody)
		return
	}

	in := service.ApprovalInput{ID: *req.ID, Approved: *req.Approved}
	if req.Version != nil {
		in.Version = *req.Version
	}

	item, err := h.moderation.SetApproval(r.Context(), caller, h.kind, in)
	if err != nil {
		writeServiceError(w, err, "Error updating "+lowerLabel(h.kind))
		return
	}

	action := "rejected"
	if item.Approved {
		action = "approved"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          fmt.Sprintf("%s %s successfully", h.kind.Label(), action),
		h.kind.BodyField(): item,
	})
}

func (h *SubmissionsHandler) writePage(w http.ResponseWriter, page model.Page[model.Submission]) {
	items := page.Items
	if items == nil {
		items = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		h.kind.ListField(): items,
		"pagination":       page.Pagination,
	})
}

func lowerLabel(kind model.Kind) string {
	if kind == model.KindPrayerPoint {
		return "prayer point"
	}
	return "testimony"
}
