// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package database

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors returned by the store. Check with errors.Is.
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// isUniqueConstraintError reports whether err is a DuckDB unique or primary
// key violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "primary key constraint")
}

// dateParam converts an optional calendar date to a driver value.
func dateParam(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return d.UTC().Format("2006-01-02")
}

// floatParam converts an optional float to a driver value.
func floatParam(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// nullableString maps "" to NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// now returns the current time truncated to microseconds, the precision of
// DuckDB TIMESTAMP.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
