// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// AddFavorite marks an event as a favorite of the user. Adding twice is a no-op.
func (db *DB) AddFavorite(ctx context.Context, userID, eventID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO favorites (user_id, event_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		userID, eventID, now())
	metrics.RecordDBQuery("insert", "favorites", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite removes a favorite. Returns ErrFavoriteNotFound when absent.
func (db *DB) RemoveFavorite(ctx context.Context, userID, eventID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND event_id = ?`, userID, eventID)
	metrics.RecordDBQuery("delete", "favorites", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// IsFavorited reports whether the user favorited the event.
// Query failures are returned, never collapsed into false.
func (db *DB) IsFavorited(ctx context.Context, userID, eventID string) (bool, error) {
	set, err := db.FavoritedSet(ctx, userID, []string{eventID})
	if err != nil {
		return false, err
	}
	return set[eventID], nil
}

// FavoritedSet returns the subset of eventIDs the user favorited.
func (db *DB) FavoritedSet(ctx context.Context, userID string, eventIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(eventIDs)), ", ")
	args := make([]interface{}, 0, len(eventIDs)+1)
	args = append(args, userID)
	for _, id := range eventIDs {
		args = append(args, id)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT event_id FROM favorites WHERE user_id = ? AND event_id IN (`+placeholders+`)`, args...)
	metrics.RecordDBQuery("list", "favorites", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return result, nil
}

// ListFavoriteEvents returns the user's favorite events, most recently
// favorited first.
func (db *DB) ListFavoriteEvents(ctx context.Context, userID string) ([]*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT `+prefixColumns("e", eventColumns)+`
		FROM favorites f JOIN events e ON e.id = f.event_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC`, userID)
	metrics.RecordDBQuery("list", "favorites", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
