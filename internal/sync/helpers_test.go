// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventhub/internal/models"
)

// fakeSource returns fixed records or a fixed error.
type fakeSource struct {
	name    string
	records []*models.NewEvent
	err     error

	mu    sync.Mutex
	calls int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context) ([]*models.NewEvent, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, FetchError(s.name, s.err)
	}
	// Fresh copies each run, as a real adapter would produce.
	out := make([]*models.NewEvent, len(s.records))
	for i, r := range s.records {
		cp := *r
		cp.SourceType = s.name
		out[i] = &cp
	}
	return out, nil
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// memStore is an in-memory EventStore with the same equivalence semantics
// as the DuckDB store.
type memStore struct {
	mu        sync.Mutex
	events    []*models.Event
	insertErr func(rec *models.NewEvent) error
	findErr   error
}

func (s *memStore) FindExistingByURL(_ context.Context, url string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, ev := range s.events {
		if ev.URL == url {
			return ev, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindExistingByNameAndDate(_ context.Context, name string, date *time.Time) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, ev := range s.events {
		if ev.Name != name {
			continue
		}
		switch {
		case date == nil && ev.StartDate == nil:
			return ev, nil
		case date != nil && ev.StartDate != nil && date.Equal(*ev.StartDate):
			return ev, nil
		}
	}
	return nil, nil
}

func (s *memStore) InsertEvent(_ context.Context, rec *models.NewEvent) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		if err := s.insertErr(rec); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	ev := &models.Event{
		ID:          uuid.New().String(),
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
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *memStore) byName(name string) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.Name == name {
			return ev
		}
	}
	return nil
}

// recordingStatus captures StatusRecorder calls.
type recordingStatus struct {
	mu      sync.Mutex
	results map[string]error
	fetched map[string]int
}

func newRecordingStatus() *recordingStatus {
	return &recordingStatus{results: map[string]error{}, fetched: map[string]int{}}
}

func (r *recordingStatus) RecordSourceResult(_ context.Context, source string, fetched int, fetchErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[source] = fetchErr
	r.fetched[source] = fetched
	return nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.Event
	err    error
}

func (p *recordingPublisher) PublishEventSynced(_ context.Context, ev *models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// stubGeocoder returns fixed coordinates, or blocks until release is closed.
type stubGeocoder struct {
	lat, lon float64
	err      error
	release  chan struct{}

	mu    sync.Mutex
	calls int
}

func (g *stubGeocoder) Geocode(_ context.Context, _ string) (float64, float64, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.release != nil {
		<-g.release // ignores its context on purpose
	}
	return g.lat, g.lon, g.err
}

func (g *stubGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// stubImages returns a fixed URL or error.
type stubImages struct {
	url string
	err error

	mu    sync.Mutex
	calls int
}

func (f *stubImages) FindImage(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.url, f.err
}

func (f *stubImages) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errUpstreamDown = errors.New("upstream down")

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
