// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package auth provides password hashing, JWT issuance and the HTTP
authentication middleware.

Accounts log in with email and password. Passwords are stored as bcrypt
hashes; a successful login returns an HS256 JWT whose subject is the user ID
and whose role claim feeds casbin authorization.

# Middleware

	mw := auth.NewMiddleware(jwtManager, errorWriter)
	r.With(mw.Authenticate).Post("/events", h.CreateEvent)     // token required
	r.With(mw.OptionalAuth).Get("/events", h.ListEvents)       // token optional

Handlers read the caller with ClaimsFromContext. OptionalAuth ignores a
missing token but still rejects a malformed or expired one, so a client
never silently loses its identity.

# Lockout

LockoutManager counts failed logins per email and locks the account for an
exponentially growing period after MaxAttempts consecutive failures.

Logout is stateless: tokens are not revoked and expire after the session
timeout.
*/
package auth
