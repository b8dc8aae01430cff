// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

// Package models defines the data structures shared by the sync engine,
// the store and the HTTP API.
//
// Key types:
//
//   - NewEvent: the canonical, source-agnostic event record every upstream
//     adapter produces and the store consumes. It has no identity until stored.
//   - Event: a persisted event with store-assigned ID and timestamps.
//   - EventWithTags: the API read model (tags plus per-user favorite flag).
//   - User, Tag, Comment, Report: the platform entities around events.
//   - SourceStatus: per-upstream sync health.
package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Source type identifiers. Sync-produced records always carry one of the
// upstream identifiers; user-authored events carry SourceUser.
const (
	SourceConnpass   = "connpass"
	SourceDoorkeeper = "doorkeeper"
	SourcePeatix     = "peatix"
	SourceUser       = "user"
)

// Column widths of the events table.
const (
	MaxEventNameLength     = 255
	MaxEventLocationLength = 255
	MaxEventTypeLength     = 50
	MaxDescriptionLength   = 5000
)

// KnownSourceTypes lists every accepted source_type value.
var KnownSourceTypes = []string{SourceConnpass, SourceDoorkeeper, SourcePeatix, SourceUser}

// IsKnownSourceType reports whether s is one of KnownSourceTypes.
func IsKnownSourceType(s string) bool {
	for _, k := range KnownSourceTypes {
		if s == k {
			return true
		}
	}
	return false
}

// NewEvent is the canonical event record.
//
// StartDate and EndDate are calendar dates at midnight UTC; nil means unset.
// Latitude and Longitude are filled by geocoding enrichment.
type NewEvent struct {
	EventType   string     `json:"event_type,omitempty"`
	Name        string     `json:"name"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	SourceType  string     `json:"source_type"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both coordinates are set.
func (e *NewEvent) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// SetCoordinates sets both coordinates.
func (e *NewEvent) SetCoordinates(lat, lon float64) {
	e.Latitude = &lat
	e.Longitude = &lon
}

// Normalize trims whitespace and clamps fields to their column widths.
func (e *NewEvent) Normalize() {
	e.Name = truncateRunes(strings.TrimSpace(e.Name), MaxEventNameLength)
	e.Location = truncateRunes(strings.TrimSpace(e.Location), MaxEventLocationLength)
	e.EventType = truncateRunes(strings.TrimSpace(e.EventType), MaxEventTypeLength)
	e.Description = strings.TrimSpace(e.Description)
	e.URL = strings.TrimSpace(e.URL)
	e.ImageURL = strings.TrimSpace(e.ImageURL)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Event is a persisted event.
type Event struct {
	ID          string     `json:"id"`
	EventType   string     `json:"event_type,omitempty"`
	Name        string     `json:"name"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	SourceType  string     `json:"source_type"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventWithTags is the API read model of an event.
// IsFavorited is nil when no user is authenticated.
type EventWithTags struct {
	Event
	Tags        []string `json:"tags"`
	IsFavorited *bool    `json:"is_favorited"`
}

// EventUpdate is a partial update; nil fields are left unchanged.
type EventUpdate struct {
	EventType   *string
	Name        *string
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
	Location    *string
	URL         *string
	ImageURL    *string
}

// IsEmpty reports whether the update changes nothing.
func (u *EventUpdate) IsEmpty() bool {
	return u.EventType == nil && u.Name == nil && u.StartDate == nil && u.EndDate == nil &&
		u.Description == nil && u.Location == nil && u.URL == nil && u.ImageURL == nil
}

// EventFilter holds list filters for the event catalog.
type EventFilter struct {
	EventType     string
	Location      string
	SourceType    string
	Search        string
	Tags          []string
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	Limit         int
	Offset        int
}

// DateOf returns t truncated to midnight UTC of its calendar date in t's own
// location. A timestamp of 2024-05-01T23:30:00+09:00 yields 2024-05-01.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
