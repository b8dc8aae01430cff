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
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// CreateComment adds a comment to an event. Returns ErrEventNotFound when
// the event does not exist.
func (db *DB) CreateComment(ctx context.Context, userID, eventID, content string) (*models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		Content:   content,
		CreatedAt: now(),
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, user_id, event_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.EventID, c.Content, c.CreatedAt)
	metrics.RecordDBQuery("insert", "comments", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return c, nil
}

// GetComment returns the comment with the given ID or ErrCommentNotFound.
func (db *DB) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	c := &models.Comment{}
	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, event_id, content, created_at FROM comments WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.EventID, &c.Content, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("get", "comments", time.Since(start), nil)
		return nil, ErrCommentNotFound
	}
	metrics.RecordDBQuery("get", "comments", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query comment: %w", err)
	}
	return c, nil
}

// ListComments returns the comments of an event, oldest first, with the
// author's name and avatar.
func (db *DB) ListComments(ctx context.Context, eventID string) ([]*models.CommentWithUser, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT c.id, c.user_id, c.event_id, c.content, c.created_at,
			COALESCE(u.name, ''), u.avatar_url
		FROM comments c LEFT JOIN users u ON u.id = c.user_id
		WHERE c.event_id = ?
		ORDER BY c.created_at`, eventID)
	metrics.RecordDBQuery("list", "comments", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.CommentWithUser, 0)
	for rows.Next() {
		var (
			c      models.CommentWithUser
			avatar sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.EventID, &c.Content, &c.CreatedAt, &c.UserName, &avatar); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.UserAvatar = avatar.String
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment and the reports against it.
func (db *DB) DeleteComment(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCommentNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE target_comment_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete comment reports: %w", err)
	}
	return tx.Commit()
}

// CreateReport files a report against a comment. Returns ErrCommentNotFound
// when the comment does not exist.
func (db *DB) CreateReport(ctx context.Context, reporterID, commentID, reason string) (*models.Report, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.GetComment(ctx, commentID); err != nil {
		return nil, err
	}

	r := &models.Report{
		ID:              uuid.New().String(),
		ReporterID:      reporterID,
		TargetCommentID: commentID,
		Reason:          reason,
		CreatedAt:       now(),
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reports (id, reporter_id, target_comment_id, reason, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.ReporterID, r.TargetCommentID, r.Reason, r.CreatedAt)
	metrics.RecordDBQuery("insert", "reports", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return r, nil
}
