// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// EnsureTag returns the tag with the given name, creating it if needed.
func (db *DB) EnsureTag(ctx context.Context, name string) (*models.Tag, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is empty")
	}

	start := time.Now()
	tag := &models.Tag{}
	err := db.conn.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name).Scan(&tag.ID, &tag.Name)
	metrics.RecordDBQuery("get", "tags", time.Since(start), nil)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}

	tag = &models.Tag{ID: uuid.New().String(), Name: name}
	start = time.Now()
	_, err = db.conn.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, tag.ID, tag.Name)
	metrics.RecordDBQuery("insert", "tags", time.Since(start), err)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Created concurrently; read the winner.
			existing := &models.Tag{}
			if qerr := db.conn.QueryRowContext(ctx, `SELECT id, name FROM tags WHERE name = ?`, name).
				Scan(&existing.ID, &existing.Name); qerr != nil {
				return nil, fmt.Errorf("failed to query tag: %w", qerr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// TagEvent associates a tag with an event. Re-tagging is a no-op.
func (db *DB) TagEvent(ctx context.Context, eventID, tagID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO event_tags (event_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`, eventID, tagID)
	metrics.RecordDBQuery("insert", "event_tags", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to tag event: %w", err)
	}
	return nil
}

// TagsForEvents returns tag names keyed by event ID for the given events.
func (db *DB) TagsForEvents(ctx context.Context, eventIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(eventIDs)), ", ")
	args := make([]interface{}, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT et.event_id, t.name FROM event_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.event_id IN (`+placeholders+`)
		ORDER BY t.name`, args...)
	metrics.RecordDBQuery("list", "event_tags", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query event tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, name string
		if err := rows.Scan(&eventID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan event tag: %w", err)
		}
		result[eventID] = append(result[eventID], name)
	}
	return result, rows.Err()
}
