// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Relationships (event_tags, favorites, comments, reports) are enforced in
// code rather than with FOREIGN KEY constraints: DuckDB cannot cascade deletes.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		event_type VARCHAR(50),
		name VARCHAR(255) NOT NULL,
		start_date DATE,
		end_date DATE,
		description TEXT,
		location VARCHAR(255),
		source_type VARCHAR(50) NOT NULL,
		url TEXT,
		image_url TEXT,
		latitude DOUBLE,
		longitude DOUBLE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		avatar_url TEXT,
		region VARCHAR(100),
		gender VARCHAR(50),
		profile TEXT,
		role VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS event_tags (
		event_id TEXT NOT NULL,
		tag_id TEXT NOT NULL,
		PRIMARY KEY (event_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, event_id)
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_event ON comments(event_id)`,

	`CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		reporter_id TEXT NOT NULL,
		target_comment_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sync_sources (
		name VARCHAR(50) PRIMARY KEY,
		status VARCHAR(20) NOT NULL,
		last_attempt TIMESTAMP,
		last_success TIMESTAMP,
		last_error TEXT,
		last_fetched INTEGER NOT NULL DEFAULT 0
	)`,
}

// createTables creates all tables and indexes.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
