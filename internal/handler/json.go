// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the JSON HTTP endpoints. Handlers decode a
// typed request, call one service method and map service errors to status
// codes in writeServiceError.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/service"
	"github.com/olegiv/koinonia/internal/util"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// writeJSON writes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeMessage writes {"message": message}.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeServerError writes a 500 {"error": message}. The message names the
// failed operation only.
func writeServerError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": message})
}

// writeServiceError maps a service error to a response. failMessage is
// used for storage and unexpected errors.
func writeServiceError(w http.ResponseWriter, err error, failMessage string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, service.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrAdminRequired):
		writeMessage(w, http.StatusForbidden, "Admin access required")
	case errors.Is(err, service.ErrNotOwner):
		writeMessage(w, http.StatusForbidden, "You can only change your own posts")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrConflict):
		writeMessage(w, http.StatusConflict, "This item was changed by someone else. Reload and try again.")
	default:
		if !errors.Is(err, service.ErrStorage) {
			slog.Error("unexpected service error", "error", err)
		}
		writeServerError(w, failMessage)
	}
}

// decodeJSON decodes a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// pageRequest reads ?page and ?limit. Missing or malformed values fall
// back to page 1 and defaultLimit.
func pageRequest(r *http.Request, defaultLimit int) model.PageRequest {
	q := r.URL.Query()
	return model.NewPageRequest(util.ParseIntOrZero(q.Get("page")), util.ParseIntOrZero(q.Get("limit")), defaultLimit)
}
