// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package api implements the Eventhub HTTP API on the chi router.

# Routes

All application routes live under /api/v1:

	/health/live, /health/ready      liveness and DuckDB readiness
	/auth/register, /auth/login      account creation and JWT issue
	/auth/logout                     stateless logout
	/events, /events/{id}            listing, detail and CRUD
	/events/{id}/comments            comments with author info
	/events/{id}/favorite            add or remove a favorite
	/comments, /comments/{id}        create, delete (author only)
	/comments/{id}/report            report a comment
	/users/me, /users/me/favorites   profile and favorites
	/admin/sync/external-events      trigger a sync run (admin)
	/admin/sync/status               sync engine status (admin)
	/admin/audit                     security audit events (admin)
	/ws                              live feed of synced events

/metrics serves Prometheus and /swagger/ serves the API docs.

# Responses

Every JSON response except the admin sync trigger uses APIResponse:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "..."}, "meta": {...}}

The sync trigger returns {"message": "...", "synced_count": n} unwrapped.

# Middleware

Global: request ID, access log, RealIP, Recoverer, CORS, Prometheus
metrics and an IP rate limit. Login carries a stricter limit. Protected
routes use JWT bearer authentication; /admin additionally goes through
Casbin.

# Swagger

Handlers carry swag annotations. Regenerate docs with:

	swag init -g cmd/server/main.go -o docs
*/
package api
