// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package models

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a platform account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Region       string    `json:"region,omitempty"`
	Gender       string    `json:"gender,omitempty"`
	Profile      string    `json:"profile,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser holds the fields needed to create an account.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	Region       string
	Gender       string
	Role         string
}

// UserUpdate is a partial profile update; nil fields are left unchanged.
type UserUpdate struct {
	Name      *string
	AvatarURL *string
	Region    *string
	Gender    *string
	Profile   *string
}

// Tag is a free-form label attached to events.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment is a user comment on an event.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentWithUser is the API read model of a comment.
type CommentWithUser struct {
	Comment
	UserName   string `json:"user_name"`
	UserAvatar string `json:"user_avatar,omitempty"`
}

// Report flags a comment for moderation.
type Report struct {
	ID              string    `json:"id"`
	ReporterID      string    `json:"reporter_id"`
	TargetCommentID string    `json:"target_comment_id"`
	Reason          string    `json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
}

// Source sync states.
const (
	SourceStatusActive  = "active"
	SourceStatusFailing = "failing"
)

// SourceStatus is the last known sync health of one upstream.
type SourceStatus struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	LastAttempt *time.Time `json:"last_attempt,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastFetched int        `json:"last_fetched"`
}
