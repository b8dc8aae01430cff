// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/eventhub/internal/audit"
	"github.com/tomtom215/eventhub/internal/auth"
	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/models"
	syncpkg "github.com/tomtom215/eventhub/internal/sync"
	"github.com/tomtom215/eventhub/internal/validation"
)

const defaultAuditLimit = 50

// SyncExternalEvents runs a sync immediately and reports how many events
// were inserted. The response is not wrapped in the envelope.
//
// @Summary Trigger an external event sync
// @Description Runs one sync across all enabled sources. Returns 409 while another run is in progress.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SyncTriggerResponse
// @Failure 401 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 409 {object} APIResponse "Sync already running"
// @Failure 500 {object} APIResponse
// @Router /admin/sync/external-events [post]
func (h *Handler) SyncExternalEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.sync == nil {
		rw.ServiceUnavailable("Sync engine not available")
		return
	}

	report, err := h.sync.TriggerSync(r.Context(), syncpkg.TriggerManual)
	if errors.Is(err, syncpkg.ErrSyncInProgress) {
		rw.Error(http.StatusConflict, ErrCodeSyncInProgress, "A sync is already in progress")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to sync external events")
		h.audit.LogAdminAction(r.Context(), currentUserID(r), clientIP(r), "sync_external_events",
			"Manual sync failed", audit.OutcomeFailure, map[string]interface{}{"error": err.Error()})
		rw.InternalError("Failed to sync external events")
		return
	}
	h.audit.LogAdminAction(r.Context(), currentUserID(r), clientIP(r), "sync_external_events",
		"Manual sync completed", audit.OutcomeSuccess, map[string]interface{}{"synced_count": report.Inserted})

	writeRawJSON(w, http.StatusOK, SyncTriggerResponse{
		Message:     "External events synced successfully",
		SyncedCount: report.Inserted,
	})
}

// SyncStatus returns the last sync time, whether a run is active and the
// per-source status.
//
// @Summary Get sync status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=syncpkg.Status}
// @Failure 401 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Router /admin/sync/status [get]
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.sync == nil {
		rw.ServiceUnavailable("Sync engine not available")
		return
	}

	status, err := h.sync.Status(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if status.Sources == nil {
		status.Sources = []models.SourceStatus{}
	}
	rw.Success(status)
}

// AuditEvents lists recorded security events, newest first.
//
// @Summary List audit events
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param type query string false "Comma-separated event types (auth.failure,admin.action)"
// @Param outcome query string false "success or failure"
// @Param actor_id query string false "User ID"
// @Param since query string false "RFC 3339 lower bound"
// @Param limit query int false "Page size" default(50) maximum(100)
// @Param offset query int false "Rows to skip"
// @Success 200 {object} APIResponse{data=[]audit.Event}
// @Failure 400 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Router /admin/audit [get]
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.audit == nil {
		rw.ServiceUnavailable("Audit log not enabled")
		return
	}

	q := r.URL.Query()
	query := AuditQuery{
		Types:   q.Get("type"),
		Outcome: q.Get("outcome"),
		ActorID: q.Get("actor_id"),
		Since:   q.Get("since"),
		Limit:   getIntParam(r, "limit", defaultAuditLimit),
		Offset:  getIntParam(r, "offset", 0),
	}
	if verr := validation.ValidateStruct(&query); verr != nil {
		rw.ValidationError(verr)
		return
	}

	filter := audit.QueryFilter{
		Outcome: audit.Outcome(query.Outcome),
		ActorID: query.ActorID,
		Limit:   query.Limit,
		Offset:  query.Offset,
	}
	for _, t := range parseCommaSeparated(query.Types) {
		filter.Types = append(filter.Types, audit.EventType(t))
	}
	if query.Since != "" {
		// Already validated as RFC 3339.
		filter.Since, _ = time.Parse(time.RFC3339, query.Since)
	}

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(events)
}

// AuditAuthzDenied records a request rejected by the authorization policy.
// It is installed as the authz middleware's denied hook.
func (h *Handler) AuditAuthzDenied(r *http.Request, claims *auth.Claims, action string) {
	h.audit.LogAuthzDenied(r.Context(), claims.UserID(), claims.Role, clientIP(r), r.URL.Path, action)
}
