// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

// Package services adapts Eventhub components to suture.Service.
//
// Each wrapper turns a component's own lifecycle (ListenAndServe/Shutdown,
// Start/Stop, RunWithContext or a periodic task) into a Serve(ctx) method
// that blocks until ctx is canceled. The wrappers depend on small
// interfaces, not on the component packages, so they can be tested with
// doubles.
//
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
//	tree.AddMessagingService(services.NewWebSocketHubService(hub))
//	tree.AddMessagingService(services.NewForwarderService(forwarder))
//	tree.AddMessagingService(services.NewSyncService(manager))
//	tree.AddDataService(services.NewCacheGCService(cache, time.Hour))
//	tree.AddDataService(services.NewAuditRetentionService(auditLogger, 24*time.Hour))
package services
