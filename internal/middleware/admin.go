// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/service"
)

// AdminResolver resolves the admin profile behind an identity.
// *service.AccessPolicy implements it.
type AdminResolver interface {
	ResolveAdmin(ctx context.Context, id identity.Identity) (*service.AdminProfile, error)
}

// RequireAdmin rejects callers that are not admins with 403 before the
// handler reads the request body. Anonymous callers get the same answer
// as non-admins. The services check again on every call.
func RequireAdmin(resolver AdminResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, _ := identity.FromContext(r.Context())
			admin, err := resolver.ResolveAdmin(r.Context(), caller)
			if err != nil {
				slog.Error("admin check failed", "error", err, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Error checking admin access"})
				return
			}
			if admin == nil {
				WriteJSONError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
