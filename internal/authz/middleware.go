// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package authz

import (
	"net/http"

	"github.com/tomtom215/eventhub/internal/auth"
	"github.com/tomtom215/eventhub/internal/logging"
)

// DeniedHook observes requests the policy rejects.
type DeniedHook func(r *http.Request, claims *auth.Claims, action string)

// Middleware authorizes authenticated requests against the enforcer.
// It must run after auth.Middleware.Authenticate.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
	onDenied   DeniedHook
}

// NewMiddleware creates the authorization middleware. A nil writeError
// falls back to plain-text responses.
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _ string, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{enforcer: enforcer, writeError: writeError}
}

// WithDeniedHook registers a callback run for every denied request.
func (m *Middleware) WithDeniedHook(hook DeniedHook) *Middleware {
	m.onDenied = hook
	return m
}

// AuthorizeRequest checks the caller's role against the request path and
// the action implied by the method.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		if claims == nil {
			m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: no authentication context")
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(claims.Role, r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Info().
				Str("user_id", claims.UserID()).
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Msg("Authorization denied")
			if m.onDenied != nil {
				m.onDenied(r, claims, action)
			}
			m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}
