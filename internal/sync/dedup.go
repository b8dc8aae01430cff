// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"time"

	"github.com/tomtom215/eventhub/internal/models"
)

// EventStore is the persistence the writer depends on. The Find methods
// return (nil, nil) when nothing matches.
type EventStore interface {
	FindExistingByURL(ctx context.Context, url string) (*models.Event, error)
	FindExistingByNameAndDate(ctx context.Context, name string, date *time.Time) (*models.Event, error)
	InsertEvent(ctx context.Context, rec *models.NewEvent) (*models.Event, error)
}

// WriteOutcome is the result of DedupWriter.WriteIfNew.
type WriteOutcome int

const (
	// Skipped means an equivalent event already existed.
	Skipped WriteOutcome = iota
	// Inserted means the record was persisted.
	Inserted
)

func (o WriteOutcome) String() string {
	if o == Inserted {
		return "inserted"
	}
	return "skipped"
}

// DedupWriter inserts a record only when no equivalent event exists.
type DedupWriter struct {
	store EventStore
}

// NewDedupWriter creates a writer over store.
func NewDedupWriter(store EventStore) *DedupWriter {
	return &DedupWriter{store: store}
}

// WriteIfNew persists rec unless an equivalent event exists. A record with a
// URL is compared on URL alone; otherwise name and start date must both
// match, two unset dates counting as equal. On Inserted the stored event is
// returned. Failures are KindStore SyncErrors.
func (w *DedupWriter) WriteIfNew(ctx context.Context, rec *models.NewEvent) (WriteOutcome, *models.Event, error) {
	existing, err := w.findEquivalent(ctx, rec)
	if err != nil {
		return Skipped, nil, StoreError(rec.Name, err)
	}
	if existing != nil {
		return Skipped, existing, nil
	}

	ev, err := w.store.InsertEvent(ctx, rec)
	if err != nil {
		return Skipped, nil, StoreError(rec.Name, err)
	}
	return Inserted, ev, nil
}

func (w *DedupWriter) findEquivalent(ctx context.Context, rec *models.NewEvent) (*models.Event, error) {
	if rec.URL != "" {
		return w.store.FindExistingByURL(ctx, rec.URL)
	}
	return w.store.FindExistingByNameAndDate(ctx, rec.Name, rec.StartDate)
}
