// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"net/http"
	"time"
)

// HealthLive reports that the process is serving.
//
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=HealthResponse}
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthResponse{
		Status:           "alive",
		WebSocketClients: h.clientCount(),
		Uptime:           time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the database answers.
//
// @Summary Readiness probe
// @Description Pings DuckDB. Returns 503 when the database is unreachable.
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=HealthResponse}
// @Failure 503 {object} APIResponse
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.store == nil || h.store.Ping(r.Context()) != nil {
		rw.ServiceUnavailable("Database unavailable")
		return
	}

	var lastSync *time.Time
	if h.sync != nil {
		if t := h.sync.LastSyncTime(); !t.IsZero() {
			lastSync = &t
		}
	}

	rw.Success(HealthResponse{
		Status:            "ready",
		DatabaseConnected: true,
		LastSyncTime:      lastSync,
		WebSocketClients:  h.clientCount(),
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}

func (h *Handler) clientCount() int {
	if h.wsHub == nil {
		return 0
	}
	return h.wsHub.GetClientCount()
}
