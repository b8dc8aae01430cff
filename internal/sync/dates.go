// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"strings"
	"time"

	"github.com/tomtom215/eventhub/internal/models"
)

// timestampLayouts are tried in order. Upstreams mostly send RFC3339 with an
// offset; a few older listings omit seconds or the offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseEventDate converts an upstream timestamp into a calendar date, taken
// in the timestamp's own offset. It returns nil for blank or unparseable input.
func parseEventDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := models.DateOf(t)
			return &d
		}
	}
	return nil
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
