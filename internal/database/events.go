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

const eventColumns = `id, event_type, name, start_date, end_date, description, location,
	source_type, url, image_url, latitude, longitude, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s rowScanner) (*models.Event, error) {
	var (
		eventType, description, location, url, imageURL sql.NullString
		startDate, endDate                               sql.NullTime
		lat, lon                                         sql.NullFloat64
		ev                                               models.Event
	)
	if err := s.Scan(&ev.ID, &eventType, &ev.Name, &startDate, &endDate, &description, &location,
		&ev.SourceType, &url, &imageURL, &lat, &lon, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		return nil, err
	}
	ev.EventType = eventType.String
	ev.Description = description.String
	ev.Location = location.String
	ev.URL = url.String
	ev.ImageURL = imageURL.String
	if startDate.Valid {
		d := models.DateOf(startDate.Time)
		ev.StartDate = &d
	}
	if endDate.Valid {
		d := models.DateOf(endDate.Time)
		ev.EndDate = &d
	}
	if lat.Valid {
		v := lat.Float64
		ev.Latitude = &v
	}
	if lon.Valid {
		v := lon.Float64
		ev.Longitude = &v
	}
	return &ev, nil
}

// queryOneEvent runs a single-row event query. It returns (nil, nil) when
// no row matches.
func (db *DB) queryOneEvent(ctx context.Context, op, query string, args ...interface{}) (*models.Event, error) {
	start := time.Now()
	ev, err := scanEvent(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery(op, "events", time.Since(start), nil)
		return nil, nil
	}
	metrics.RecordDBQuery(op, "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return ev, nil
}

// FindExistingByURL returns the first event with the given URL, or nil.
func (db *DB) FindExistingByURL(ctx context.Context, url string) (*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.queryOneEvent(ctx, "find_by_url",
		`SELECT `+eventColumns+` FROM events WHERE url = ? ORDER BY created_at LIMIT 1`, url)
}

// FindExistingByNameAndDate returns the first event with the given name and
// start date, or nil. A nil date matches events whose start date is unset.
func (db *DB) FindExistingByNameAndDate(ctx context.Context, name string, date *time.Time) (*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.queryOneEvent(ctx, "find_by_name_date",
		`SELECT `+eventColumns+` FROM events
		WHERE name = ? AND start_date IS NOT DISTINCT FROM CAST(? AS DATE)
		ORDER BY created_at LIMIT 1`, name, dateParam(date))
}

// InsertEvent persists rec and returns the stored event with its new ID.
func (db *DB) InsertEvent(ctx context.Context, rec *models.NewEvent) (*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	id := uuid.New().String()
	ts := now()
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, CAST(? AS DATE), CAST(? AS DATE), ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nullableString(rec.EventType), rec.Name, dateParam(rec.StartDate), dateParam(rec.EndDate),
		nullableString(rec.Description), nullableString(rec.Location), rec.SourceType,
		nullableString(rec.URL), nullableString(rec.ImageURL),
		floatParam(rec.Latitude), floatParam(rec.Longitude), ts, ts)
	metrics.RecordDBQuery("insert", "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return &models.Event{
		ID:          id,
		EventType:   rec.EventType,
		Name:        rec.Name,
		StartDate:   rec.StartDate,
		EndDate:     rec.EndDate,
		Description: rec.Description,
		Location:    rec.Location,
		SourceType:  rec.SourceType,
		URL:         rec.URL,
		ImageURL:    rec.ImageURL,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}, nil
}

// GetEvent returns the event with the given ID or ErrEventNotFound.
func (db *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	ev, err := db.queryOneEvent(ctx, "get", `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

// UpdateEvent applies a partial update and returns the updated event.
func (db *DB) UpdateEvent(ctx context.Context, id string, upd *models.EventUpdate) (*models.Event, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	sets := make([]string, 0, 9)
	args := make([]interface{}, 0, 10)
	addSet := func(col string, val interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	if upd.EventType != nil {
		addSet("event_type", nullableString(*upd.EventType))
	}
	if upd.Name != nil {
		addSet("name", *upd.Name)
	}
	if upd.StartDate != nil {
		sets = append(sets, "start_date = CAST(? AS DATE)")
		args = append(args, dateParam(upd.StartDate))
	}
	if upd.EndDate != nil {
		sets = append(sets, "end_date = CAST(? AS DATE)")
		args = append(args, dateParam(upd.EndDate))
	}
	if upd.Description != nil {
		addSet("description", nullableString(*upd.Description))
	}
	if upd.Location != nil {
		addSet("location", nullableString(*upd.Location))
	}
	if upd.URL != nil {
		addSet("url", nullableString(*upd.URL))
	}
	if upd.ImageURL != nil {
		addSet("image_url", nullableString(*upd.ImageURL))
	}
	addSet("updated_at", now())
	args = append(args, id)

	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE events SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	metrics.RecordDBQuery("update", "events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrEventNotFound
	}
	return db.GetEvent(ctx, id)
}

// DeleteEvent removes an event together with its tags, favorites, comments
// and the reports against those comments.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventNotFound
	}

	cleanup := []string{
		`DELETE FROM reports WHERE target_comment_id IN (SELECT id FROM comments WHERE event_id = ?)`,
		`DELETE FROM comments WHERE event_id = ?`,
		`DELETE FROM favorites WHERE event_id = ?`,
		`DELETE FROM event_tags WHERE event_id = ?`,
	}
	for _, stmt := range cleanup {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete event dependents: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event deletion: %w", err)
	}
	return nil
}

// ListEvents returns one page of events matching filter, ordered by start
// date descending, together with the total number of matches.
func (db *DB) ListEvents(ctx context.Context, filter *models.EventFilter) ([]*models.Event, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := buildEventFilter(filter)

	var total int64
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total)
	metrics.RecordDBQuery("count", "events", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	pageArgs := append(append([]interface{}{}, args...), limit, filter.Offset)

	start = time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT `+eventColumns+` FROM events`+where+`
		ORDER BY start_date DESC NULLS LAST, created_at DESC
		LIMIT ? OFFSET ?`, pageArgs...)
	metrics.RecordDBQuery("list", "events", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func collectEvents(rows *sql.Rows) ([]*models.Event, error) {
	events := make([]*models.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// buildEventFilter returns a WHERE clause (with leading space) and its args.
func buildEventFilter(f *models.EventFilter) (string, []interface{}) {
	if f == nil {
		return "", nil
	}
	var (
		conds []string
		args  []interface{}
	)
	if f.EventType != "" {
		conds = append(conds, "event_type = ?")
		args = append(args, f.EventType)
	}
	if f.SourceType != "" {
		conds = append(conds, "source_type = ?")
		args = append(args, f.SourceType)
	}
	if f.Location != "" {
		conds = append(conds, `location ILIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.Location)+"%")
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		conds = append(conds, `(name ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\' OR location ILIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.StartDateFrom != nil {
		conds = append(conds, "start_date >= CAST(? AS DATE)")
		args = append(args, dateParam(f.StartDateFrom))
	}
	if f.StartDateTo != nil {
		conds = append(conds, "start_date <= CAST(? AS DATE)")
		args = append(args, dateParam(f.StartDateTo))
	}
	if len(f.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Tags)), ", ")
		conds = append(conds, `id IN (SELECT et.event_id FROM event_tags et
			JOIN tags t ON t.id = et.tag_id WHERE t.name IN (`+placeholders+`))`)
		for _, tag := range f.Tags {
			args = append(args, tag)
		}
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
