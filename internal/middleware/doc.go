// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package middleware provides HTTP middleware shared by the API router.

All middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: assigns or propagates X-Request-ID and seeds the logging context
  - PrometheusMetrics: records request count, latency and in-flight gauge
  - AccessLog: one structured zerolog line per request

Ordering in the router:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

RequestID must run first so later middleware and handlers see the IDs.
Response writers are wrapped with chi's WrapResponseWriter, which keeps
http.Hijacker available for the WebSocket upgrade.
*/
package middleware
