// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		field   string
		message string
	}{
		{"validation", &service.ValidationError{Field: "testimony", Message: "Testimony is required"}, http.StatusBadRequest, "message", "Testimony is required"},
		{"unauthorized", fmt.Errorf("%w: no identity", service.ErrUnauthorized), http.StatusUnauthorized, "message", "Unauthorized"},
		{"admin required", service.ErrAdminRequired, http.StatusForbidden, "message", "Admin access required"},
		{"not owner", service.ErrNotOwner, http.StatusForbidden, "message", "You can only change your own posts"},
		{"not found", fmt.Errorf("%w: post 4", service.ErrNotFound), http.StatusNotFound, "message", "Not found"},
		{"stale", service.ErrStaleVersion, http.StatusConflict, "message", "This item was changed by someone else. Reload and try again."},
		{"storage", fmt.Errorf("%w: list users", service.ErrStorage), http.StatusInternalServerError, "error", "Error fetching users"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "error", "Error fetching users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeServiceError(rr, tt.err, "Error fetching users")

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			body := decodeBody(t, rr)
			if body[tt.field] != tt.message {
				t.Errorf("%s = %v, want %q", tt.field, body[tt.field], tt.message)
			}
		})
	}
}

func TestWriteServiceErrorHidesStorageDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeServiceError(rr, fmt.Errorf("%w: open /var/lib/koinonia.db", service.ErrStorage), "Error updating user")

	if got := rr.Body.String(); got != "{\"error\":\"Error updating user\"}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestPageRequest(t *testing.T) {
	tests := []struct {
		query string
		want  model.PageRequest
	}{
		{"", model.PageRequest{Page: 1, Limit: 50}},
		{"?page=3&limit=10", model.PageRequest{Page: 3, Limit: 10}},
		{"?page=abc&limit=-4", model.PageRequest{Page: 1, Limit: 50}},
		{"?limit=1000", model.PageRequest{Page: 1, Limit: model.MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/testimony/pending"+tt.query, nil)
			if got := pageRequest(req, model.DefaultAdminLimit); got != tt.want {
				t.Errorf("pageRequest() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
