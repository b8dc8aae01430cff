// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// Enrichment kinds used in errors and metrics.
const (
	enrichGeocode = "geocode"
	enrichImage   = "image"
)

// Geocoder resolves a free-form location to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (lat, lon float64, err error)
}

// ImageFinder finds a representative image URL for an event name.
type ImageFinder interface {
	FindImage(ctx context.Context, name string) (string, error)
}

// Enricher fills absent record fields on a best-effort basis. Either
// collaborator may be nil, which disables that enrichment.
type Enricher struct {
	geocoder    Geocoder
	images      ImageFinder
	timeout     time.Duration
	concurrency int
}

// NewEnricher creates an Enricher. Each call is bounded by timeout and at
// most concurrency records are enriched at once.
func NewEnricher(geocoder Geocoder, images ImageFinder, timeout time.Duration, concurrency int) *Enricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Enricher{geocoder: geocoder, images: images, timeout: timeout, concurrency: concurrency}
}

// EnrichAll enriches every record concurrently. It returns when all records
// are done; enrichment failures never surface.
func (e *Enricher) EnrichAll(ctx context.Context, records []*models.NewEvent) {
	if e == nil || (e.geocoder == nil && e.images == nil) || len(records) == 0 {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for _, rec := range records {
		g.Go(func() error {
			e.Enrich(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
}

// Enrich fills the coordinates when a location is known but unresolved, and
// the image when none was supplied. A value set by the adapter is never
// overwritten.
func (e *Enricher) Enrich(ctx context.Context, rec *models.NewEvent) {
	if e.geocoder != nil && rec.Location != "" && !rec.HasCoordinates() {
		if err := e.geocode(ctx, rec); err != nil {
			e.report(enrichGeocode, rec.Name, err)
		}
	}
	if e.images != nil && rec.ImageURL == "" {
		if err := e.findImage(ctx, rec); err != nil {
			e.report(enrichImage, rec.Name, err)
		}
	}
}

type geocodeResult struct {
	lat, lon float64
	err      error
}

func (e *Enricher) geocode(ctx context.Context, rec *models.NewEvent) error {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Buffered so a call that ignores its context can still finish and exit.
	done := make(chan geocodeResult, 1)
	location := rec.Location
	go func() {
		lat, lon, err := e.geocoder.Geocode(callCtx, location)
		done <- geocodeResult{lat: lat, lon: lon, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return EnrichError(enrichGeocode, res.err)
		}
		rec.SetCoordinates(res.lat, res.lon)
		metrics.RecordEnrichment(enrichGeocode, "success")
		return nil
	case <-callCtx.Done():
		return EnrichError(enrichGeocode, fmt.Errorf("timed out after %s: %w", e.timeout, callCtx.Err()))
	}
}

type imageResult struct {
	url string
	err error
}

func (e *Enricher) findImage(ctx context.Context, rec *models.NewEvent) error {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan imageResult, 1)
	name := rec.Name
	go func() {
		url, err := e.images.FindImage(callCtx, name)
		done <- imageResult{url: url, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return EnrichError(enrichImage, res.err)
		}
		if res.url == "" {
			return EnrichError(enrichImage, errors.New("no image found"))
		}
		rec.ImageURL = res.url
		metrics.RecordEnrichment(enrichImage, "success")
		return nil
	case <-callCtx.Done():
		return EnrichError(enrichImage, fmt.Errorf("timed out after %s: %w", e.timeout, callCtx.Err()))
	}
}

func (e *Enricher) report(kind, record string, err error) {
	result := "failure"
	switch {
	case errors.Is(err, ErrEnrichmentNotConfigured):
		result = "disabled"
	case errors.Is(err, context.DeadlineExceeded):
		result = "timeout"
	}
	metrics.RecordEnrichment(kind, result)
	logging.Debug().Err(err).Str("kind", kind).Str("event", record).Msg("Enrichment skipped")
}
