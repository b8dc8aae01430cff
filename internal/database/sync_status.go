// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// maxStoredErrorLength bounds last_error.
const maxStoredErrorLength = 500

// RecordSourceResult upserts the sync status of one upstream after a fetch.
// A nil fetchErr marks the source active and updates last_success.
func (db *DB) RecordSourceResult(ctx context.Context, source string, fetched int, fetchErr error) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	ts := now()
	start := time.Now()
	var err error
	if fetchErr == nil {
		_, err = db.conn.ExecContext(ctx, `INSERT INTO sync_sources
			(name, status, last_attempt, last_success, last_error, last_fetched)
			VALUES (?, ?, ?, ?, NULL, ?)
			ON CONFLICT (name) DO UPDATE SET
				status = excluded.status,
				last_attempt = excluded.last_attempt,
				last_success = excluded.last_success,
				last_error = NULL,
				last_fetched = excluded.last_fetched`,
			source, models.SourceStatusActive, ts, ts, fetched)
	} else {
		msg := fetchErr.Error()
		if len(msg) > maxStoredErrorLength {
			msg = msg[:maxStoredErrorLength]
		}
		_, err = db.conn.ExecContext(ctx, `INSERT INTO sync_sources
			(name, status, last_attempt, last_success, last_error, last_fetched)
			VALUES (?, ?, ?, NULL, ?, 0)
			ON CONFLICT (name) DO UPDATE SET
				status = excluded.status,
				last_attempt = excluded.last_attempt,
				last_error = excluded.last_error,
				last_fetched = 0`,
			source, models.SourceStatusFailing, ts, msg)
	}
	metrics.RecordDBQuery("upsert", "sync_sources", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record source status: %w", err)
	}
	return nil
}

// ListSourceStatus returns the status of every upstream seen so far.
func (db *DB) ListSourceStatus(ctx context.Context) ([]models.SourceStatus, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT name, status, last_attempt, last_success, last_error, last_fetched
		FROM sync_sources ORDER BY name`)
	metrics.RecordDBQuery("list", "sync_sources", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list source status: %w", err)
	}
	defer rows.Close()

	statuses := make([]models.SourceStatus, 0)
	for rows.Next() {
		var (
			s                        models.SourceStatus
			lastAttempt, lastSuccess sql.NullTime
			lastError                sql.NullString
		)
		if err := rows.Scan(&s.Name, &s.Status, &lastAttempt, &lastSuccess, &lastError, &s.LastFetched); err != nil {
			return nil, fmt.Errorf("failed to scan source status: %w", err)
		}
		if lastAttempt.Valid {
			t := lastAttempt.Time
			s.LastAttempt = &t
		}
		if lastSuccess.Valid {
			t := lastSuccess.Time
			s.LastSuccess = &t
		}
		s.LastError = lastError.String
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source status: %w", err)
	}
	return statuses, nil
}
