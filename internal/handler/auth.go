// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/model"
	"github.com/olegiv/koinonia/internal/service"
	"github.com/olegiv/koinonia/internal/session"
)

// AuthHandler exchanges provider tokens for sessions and answers the
// admin-check convenience query.
type AuthHandler struct {
	verifier       *identity.Verifier
	sessionManager *scs.SessionManager
	users          *service.UserService
	policy         *service.AccessPolicy
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(verifier *identity.Verifier, sm *scs.SessionManager, users *service.UserService, policy *service.AccessPolicy) *AuthHandler {
	return &AuthHandler{
		verifier:       verifier,
		sessionManager: sm,
		users:          users,
		policy:         policy,
	}
}

type sessionRequest struct {
	Token string `json:"token"`
}

// AdminCheck handles GET /auth/admin-check. It reports false for
// anonymous callers and on lookup errors.
func (h *AuthHandler) AdminCheck(w http.ResponseWriter, r *http.Request) {
	caller, _ := identity.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"isAdmin": h.policy.IsAdminStatus(r.Context(), caller)})
}

// Session handles POST /auth/session. The token comes from the body or,
// when the body carries none, from a bearer header already verified by
// the identity middleware.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var caller identity.Identity
	if req.Token != "" {
		id, err := h.verifier.Verify(req.Token)
		if err != nil {
			slog.Warn("identity token rejected", "error", err, "ip", r.RemoteAddr)
			writeMessage(w, http.StatusUnauthorized, "Invalid identity token")
			return
		}
		caller = id
	} else if id, ok := identity.FromContext(r.Context()); ok {
		caller = id
	} else {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.users.EnsureUser(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err, "Error signing in")
		return
	}

	if err := session.PutIdentity(r.Context(), h.sessionManager, caller); err != nil {
		slog.Error("failed to store session identity", "error", err)
		writeServerError(w, "Error signing in")
		return
	}

	slog.Info("user signed in", "user_id", user.ID, "email", user.Email, "category", model.EventCategoryAuth)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.Clear(r.Context(), h.sessionManager); err != nil {
		slog.Error("failed to destroy session", "error", err)
		writeServerError(w, "Error signing out")
		return
	}
	writeMessage(w, http.StatusOK, "Signed out")
}
