// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"context"
	"time"

	"github.com/tomtom215/eventhub/internal/audit"
	"github.com/tomtom215/eventhub/internal/auth"
	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/models"
	syncpkg "github.com/tomtom215/eventhub/internal/sync"
	ws "github.com/tomtom215/eventhub/internal/websocket"
)

// EventStore is the event, tag and favorite persistence used by handlers.
type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	InsertEvent(ctx context.Context, rec *models.NewEvent) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, upd *models.EventUpdate) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, filter *models.EventFilter) ([]*models.Event, int64, error)

	EnsureTag(ctx context.Context, name string) (*models.Tag, error)
	TagEvent(ctx context.Context, eventID, tagID string) error
	TagsForEvents(ctx context.Context, eventIDs []string) (map[string][]string, error)

	AddFavorite(ctx context.Context, userID, eventID string) error
	RemoveFavorite(ctx context.Context, userID, eventID string) error
	FavoritedSet(ctx context.Context, userID string, eventIDs []string) (map[string]bool, error)
	ListFavoriteEvents(ctx context.Context, userID string) ([]*models.Event, error)
}

// CommentStore persists comments and reports.
type CommentStore interface {
	CreateComment(ctx context.Context, userID, eventID, content string) (*models.Comment, error)
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, eventID string) ([]*models.CommentWithUser, error)
	DeleteComment(ctx context.Context, id string) error
	CreateReport(ctx context.Context, reporterID, commentID, reason string) (*models.Report, error)
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, nu *models.NewUser) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd *models.UserUpdate) (*models.User, error)
}

// Store is everything the API reads and writes. *database.DB implements it.
type Store interface {
	EventStore
	CommentStore
	UserStore
	Ping(ctx context.Context) error
}

// SyncController is the admin view of the sync engine. *sync.Manager
// implements it.
type SyncController interface {
	TriggerSync(ctx context.Context, trigger string) (*syncpkg.RunReport, error)
	Status(ctx context.Context) (*syncpkg.Status, error)
	LastSyncTime() time.Time
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	store     Store
	sync      SyncController
	wsHub     *ws.Hub
	jwt       *auth.JWTManager
	hasher    *auth.PasswordHasher
	lockout   *auth.LockoutManager
	audit     *audit.Logger
	config    *config.Config
	startTime time.Time
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithPasswordHasher replaces the default bcrypt hasher.
func WithPasswordHasher(h *auth.PasswordHasher) HandlerOption {
	return func(handler *Handler) { handler.hasher = h }
}

// WithLockoutManager replaces the default login lockout policy.
func WithLockoutManager(l *auth.LockoutManager) HandlerOption {
	return func(handler *Handler) { handler.lockout = l }
}

// WithAuditLogger records security events. Without it nothing is audited.
func WithAuditLogger(l *audit.Logger) HandlerOption {
	return func(handler *Handler) { handler.audit = l }
}

// NewHandler creates a Handler. syncCtl and hub may be nil; the routes that
// need them then answer 503.
func NewHandler(store Store, syncCtl SyncController, hub *ws.Hub, jwtManager *auth.JWTManager, cfg *config.Config, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:     store,
		sync:      syncCtl,
		wsHub:     hub,
		jwt:       jwtManager,
		hasher:    auth.NewPasswordHasher(auth.DefaultBcryptCost),
		lockout:   auth.NewLockoutManager(auth.DefaultLockoutConfig()),
		config:    cfg,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
