// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/session"
)

// bearerToken returns the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// LoadIdentity puts the caller's identity into the request context. A
// bearer token takes precedence over the session; an invalid token is
// rejected outright instead of falling back to the session cookie.
// Requests without either pass through anonymously.
func LoadIdentity(verifier *identity.Verifier, sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				id, err := verifier.Verify(token)
				if err != nil {
					WriteJSONError(w, http.StatusUnauthorized, "Invalid identity token")
					return
				}
				next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
				return
			}

			if sm != nil {
				if id, ok := session.GetIdentity(r.Context(), sm); ok {
					next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects anonymous requests with 401.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identity.FromContext(r.Context()); !ok {
			WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
