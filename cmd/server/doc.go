// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

// Command server runs the Eventhub API.
//
// Eventhub aggregates tech events from connpass, Doorkeeper and Peatix into
// one DuckDB catalog, lets users publish their own events, favorite and
// comment on them, and pushes newly synced events to WebSocket clients.
//
// # Components
//
//	RootSupervisor ("eventhub")
//	├── data-layer
//	│   ├── enrichment cache GC (when ENRICHMENT_CACHE_PATH is set)
//	│   └── audit retention (when AUDIT_ENABLED and AUDIT_RETENTION_DAYS > 0)
//	├── messaging-layer
//	│   ├── WebSocket hub
//	│   ├── event forwarder (bus -> hub)
//	│   └── sync manager (cron schedule, optional startup run)
//	└── api-layer
//	    └── HTTP server (chi)
//
// DuckDB, the event bus and the enrichment cache are opened before the tree
// starts and closed after it stops.
//
// # Configuration
//
// Settings come from defaults, then an optional YAML file (CONFIG_PATH or
// ./config.yaml), then environment variables:
//
//	HTTP_PORT=8080
//	DUCKDB_PATH=/data/eventhub.duckdb
//	JWT_SECRET=<32+ chars>           # required
//	ADMIN_EMAILS=ops@example.com     # registered with the admin role
//	CORS_ORIGINS=https://app.example.com
//	SYNC_SCHEDULE="0 */6 * * *"
//	SYNC_RUN_ON_STARTUP=true
//	CONNPASS_API_KEY=...
//	DOORKEEPER_TOKEN=...
//	GEOCODE_URL=https://nominatim.openstreetmap.org
//	UNSPLASH_ACCESS_KEY=...
//	NATS_URL=nats://localhost:4222   # empty keeps the bus in-process
//	AUDIT_ENABLED=true               # security events in audit_events
//	AUDIT_RETENTION_DAYS=90
//	LOG_LEVEL=info
//	LOG_FORMAT=json
//
// # Signals
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for up to 10 seconds.
package main
