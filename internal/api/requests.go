// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"time"

	"github.com/tomtom215/eventhub/internal/models"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,weburl,max=2048"`
	Region    string `json:"region,omitempty" validate:"max=100"`
	Gender    string `json:"gender,omitempty" validate:"max=20"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UserEventRequest is the body of POST /events.
type UserEventRequest struct {
	EventType   string   `json:"event_type,omitempty" validate:"max=50"`
	Name        string   `json:"name" validate:"required,max=255"`
	StartDate   string   `json:"start_date,omitempty" validate:"omitempty,isodate"`
	EndDate     string   `json:"end_date,omitempty" validate:"omitempty,isodate"`
	Description string   `json:"description,omitempty" validate:"max=5000"`
	Location    string   `json:"location,omitempty" validate:"max=255"`
	URL         string   `json:"url,omitempty" validate:"omitempty,weburl,max=2048"`
	ImageURL    string   `json:"image_url,omitempty" validate:"omitempty,weburl,max=2048"`
	Tags        []string `json:"tags,omitempty" validate:"max=20,dive,required,max=50"`
}

// UpdateEventRequest is the body of PUT /events/{id}. Absent fields are
// left unchanged.
type UpdateEventRequest struct {
	EventType   *string `json:"event_type,omitempty" validate:"omitnil,max=50"`
	Name        *string `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	StartDate   *string `json:"start_date,omitempty" validate:"omitnil,isodate"`
	EndDate     *string `json:"end_date,omitempty" validate:"omitnil,isodate"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=5000"`
	Location    *string `json:"location,omitempty" validate:"omitnil,max=255"`
	URL         *string `json:"url,omitempty" validate:"omitnil,max=2048"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitnil,max=2048"`
}

// EventListQuery holds the query parameters of GET /events.
type EventListQuery struct {
	EventType     string `json:"event_type" validate:"max=50"`
	Location      string `json:"location" validate:"max=255"`
	SourceType    string `json:"source_type" validate:"omitempty,oneof=connpass doorkeeper peatix user"`
	StartDateFrom string `json:"start_date_from" validate:"omitempty,isodate"`
	StartDateTo   string `json:"start_date_to" validate:"omitempty,isodate"`
	Tags          string `json:"tags" validate:"max=500"`
	Search        string `json:"search" validate:"max=255"`
	Page          int    `json:"page" validate:"gte=1,lte=100000"`
	Limit         int    `json:"limit" validate:"gte=1,lte=100"`
}

// EventListResponse is the data of GET /events.
type EventListResponse struct {
	Events []*models.EventWithTags `json:"events"`
	Total  int64                   `json:"total"`
	Page   int                     `json:"page"`
	Limit  int                     `json:"limit"`
}

// AuditQuery holds the query parameters of GET /admin/audit.
type AuditQuery struct {
	Types   string `json:"type" validate:"max=200"`
	Outcome string `json:"outcome" validate:"omitempty,oneof=success failure"`
	ActorID string `json:"actor_id" validate:"max=64"`
	Since   string `json:"since" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit   int    `json:"limit" validate:"gte=1,lte=100"`
	Offset  int    `json:"offset" validate:"gte=0"`
}

// CreateCommentRequest is the body of POST /comments.
type CreateCommentRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
	Content string `json:"content" validate:"required,max=2000"`
}

// ReportCommentRequest is the body of POST /comments/{id}/report.
type ReportCommentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// UpdateUserRequest is the body of PUT /users/me.
type UpdateUserRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitnil,min=1,max=100"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitnil,max=2048"`
	Region    *string `json:"region,omitempty" validate:"omitnil,max=100"`
	Gender    *string `json:"gender,omitempty" validate:"omitnil,max=20"`
	Profile   *string `json:"profile,omitempty" validate:"omitnil,max=2000"`
}

// SyncTriggerResponse is the unwrapped body of POST /admin/sync/external-events.
type SyncTriggerResponse struct {
	Message     string `json:"message"`
	SyncedCount int    `json:"synced_count"`
}

// HealthResponse is the data of the health endpoints.
type HealthResponse struct {
	Status            string     `json:"status"`
	DatabaseConnected bool       `json:"database_connected"`
	LastSyncTime      *time.Time `json:"last_sync_time,omitempty"`
	WebSocketClients  int        `json:"websocket_clients"`
	Uptime            float64    `json:"uptime_seconds"`
}
