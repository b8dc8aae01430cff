// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/metrics"
)

const storeTimeout = 5 * time.Second

// Config holds configuration for the audit logger.
type Config struct {
	Enabled bool

	// RetentionDays is how long Prune keeps events. Zero keeps them forever.
	RetentionDays int

	// BufferSize is the capacity of the async write buffer.
	BufferSize int

	// LogToStdout also writes each event to the application log.
	LogToStdout bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		RetentionDays: 90,
		BufferSize:    256,
	}
}

// Logger writes audit events to a Store in the background.
type Logger struct {
	config    Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogger creates a logger and starts its writer goroutine. A nil config
// uses DefaultConfig.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	l := &Logger{
		config:    cfg,
		store:     store,
		eventChan: make(chan *Event, cfg.BufferSize),
		stopChan:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.asyncWriter()
	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	if l.config.LogToStdout {
		logging.Info().
			Str("audit_type", string(event.Type)).
			Str("outcome", string(event.Outcome)).
			Str("actor_id", event.ActorID).
			Str("actor_name", event.ActorName).
			Str("source_ip", event.SourceIP).
			Str("request_id", event.RequestID).
			Msg(event.Description)
	}
	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "error").Inc()
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
		return
	}
	metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "saved").Inc()
}

// Log queues an event. ID and Timestamp are filled in when empty. Events
// are dropped when the logger is disabled or its buffer is full.
func (l *Logger) Log(event *Event) {
	if l == nil || !l.config.Enabled {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case l.eventChan <- event:
	default:
		metrics.AuditEventsTotal.WithLabelValues(string(event.Type), "dropped").Inc()
		logging.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

// Close flushes queued events and stops the writer. It is safe to call
// more than once.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// Query returns stored events matching filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	if l.store == nil {
		return []Event{}, nil
	}
	return l.store.Query(ctx, filter)
}

// Prune deletes events older than the retention period.
func (l *Logger) Prune(ctx context.Context) (int64, error) {
	if l.store == nil || l.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -l.config.RetentionDays)
	n, err := l.store.Delete(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit events: %w", err)
	}
	if n > 0 {
		logging.Info().Int64("count", n).Msg("Pruned expired audit events")
	}
	return n, nil
}

// CollectGarbage runs Prune with a bounded context so the logger can be
// supervised like the enrichment cache.
func (l *Logger) CollectGarbage() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err := l.Prune(ctx)
	return err
}

// LogAuthSuccess records a successful login.
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, email, sourceIP string) {
	l.Log(&Event{
		Type:        EventTypeAuthSuccess,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		ActorID:     userID,
		ActorName:   email,
		SourceIP:    sourceIP,
		Action:      "login",
		Description: "User logged in",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthFailure records a rejected login. The email is whatever the
// caller submitted and may not belong to an account.
func (l *Logger) LogAuthFailure(ctx context.Context, email, sourceIP, reason string) {
	l.Log(&Event{
		Type:        EventTypeAuthFailure,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		ActorName:   email,
		SourceIP:    sourceIP,
		Action:      "login",
		Description: "Login failed: " + reason,
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthLockout records an account lockout.
func (l *Logger) LogAuthLockout(ctx context.Context, email, sourceIP string, duration time.Duration) {
	l.Log(&Event{
		Type:        EventTypeAuthLockout,
		Severity:    SeverityCritical,
		Outcome:     OutcomeFailure,
		ActorName:   email,
		SourceIP:    sourceIP,
		Action:      "lockout",
		Description: "Account locked after repeated failed logins",
		Metadata:    mustJSON(map[string]interface{}{"duration_seconds": int64(duration.Seconds())}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogLogout records a logout.
func (l *Logger) LogLogout(ctx context.Context, userID, sourceIP string) {
	l.Log(&Event{
		Type:        EventTypeLogout,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		ActorID:     userID,
		SourceIP:    sourceIP,
		Action:      "logout",
		Description: "User logged out",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogUserCreated records a registration.
func (l *Logger) LogUserCreated(ctx context.Context, userID, email, role, sourceIP string) {
	l.Log(&Event{
		Type:        EventTypeUserCreated,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		ActorID:     userID,
		ActorName:   email,
		SourceIP:    sourceIP,
		Action:      "register",
		Description: "User registered",
		Metadata:    mustJSON(map[string]string{"role": role}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogUserModified records a profile update.
func (l *Logger) LogUserModified(ctx context.Context, userID, sourceIP string) {
	l.Log(&Event{
		Type:        EventTypeUserModified,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		ActorID:     userID,
		SourceIP:    sourceIP,
		Action:      "update_profile",
		Description: "User profile updated",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthzDenied records a request rejected by the authorization policy.
func (l *Logger) LogAuthzDenied(ctx context.Context, userID, role, sourceIP, resource, action string) {
	l.Log(&Event{
		Type:        EventTypeAuthzDenied,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		ActorID:     userID,
		SourceIP:    sourceIP,
		Action:      action,
		Description: "Access denied to " + resource,
		Metadata:    mustJSON(map[string]string{"role": role, "resource": resource}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAdminAction records an administrative operation and its outcome.
func (l *Logger) LogAdminAction(ctx context.Context, userID, sourceIP, action, description string, outcome Outcome, metadata map[string]interface{}) {
	severity := SeverityInfo
	if outcome == OutcomeFailure {
		severity = SeverityWarning
	}
	var meta json.RawMessage
	if len(metadata) > 0 {
		meta = mustJSON(metadata)
	}
	l.Log(&Event{
		Type:        EventTypeAdminAction,
		Severity:    severity,
		Outcome:     outcome,
		ActorID:     userID,
		SourceIP:    sourceIP,
		Action:      action,
		Description: description,
		Metadata:    meta,
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
