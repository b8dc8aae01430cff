// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package supervisor runs the long-lived parts of Eventhub under a suture v4
supervisor tree.

Services are grouped into three layers so a failure in one does not take
the others down:

	RootSupervisor ("eventhub")
	├── DataSupervisor ("data-layer")
	│   ├── CacheGCService (enrichment cache, when enabled)
	│   └── AuditRetentionService (audit log, when enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   ├── ForwarderService (bus -> WebSocket hub)
	│   └── SyncService (scheduled and startup syncs)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that returns an error is restarted with suture's backoff. The
tree stops when the context passed to Serve is canceled; each service gets
ShutdownTimeout to return.

DuckDB and the event bus are not supervised. They are opened in main and
closed after the tree has stopped.

Supervisor events are logged through sutureslog, using the slog bridge from
the logging package.
*/
package supervisor
