// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/models"
)

func TestEnricher_UnconfiguredLeavesRecordUnchanged(t *testing.T) {
	client := NewHTTPClient(time.Second)
	geo := NewNominatimGeocoder(config.GeocodeConfig{}, client)
	images := NewUnsplashImageFinder(config.ImageConfig{URL: "https://api.unsplash.com"}, client)

	if _, _, err := geo.Geocode(context.Background(), "Tokyo"); !errors.Is(err, ErrEnrichmentNotConfigured) {
		t.Errorf("Geocode() error = %v, want ErrEnrichmentNotConfigured", err)
	}
	if _, err := images.FindImage(context.Background(), "Go"); !errors.Is(err, ErrEnrichmentNotConfigured) {
		t.Errorf("FindImage() error = %v, want ErrEnrichmentNotConfigured", err)
	}

	e := NewEnricher(geo, images, time.Second, 1)
	rec := &models.NewEvent{Name: "Go", Location: "Tokyo"}
	e.Enrich(context.Background(), rec)

	if rec.HasCoordinates() || rec.ImageURL != "" {
		t.Errorf("record changed by unconfigured enrichment: %+v", rec)
	}

	if err := e.geocode(context.Background(), rec); !IsKind(err, KindEnrich) || !errors.Is(err, ErrEnrichmentNotConfigured) {
		t.Errorf("geocode() error = %v, want enrich error wrapping ErrEnrichmentNotConfigured", err)
	}
}

func TestEnricher_NeverOverwrites(t *testing.T) {
	geo := &stubGeocoder{lat: 1, lon: 2}
	images := &stubImages{url: "https://img/new.jpg"}
	e := NewEnricher(geo, images, time.Second, 1)

	lat, lon := 10.0, 20.0
	rec := &models.NewEvent{
		Name:      "Has Everything",
		Location:  "Osaka",
		ImageURL:  "https://img/original.jpg",
		Latitude:  &lat,
		Longitude: &lon,
	}
	e.Enrich(context.Background(), rec)

	if *rec.Latitude != 10 || *rec.Longitude != 20 {
		t.Errorf("coordinates overwritten: %v,%v", *rec.Latitude, *rec.Longitude)
	}
	if rec.ImageURL != "https://img/original.jpg" {
		t.Errorf("ImageURL overwritten: %q", rec.ImageURL)
	}
	if geo.callCount() != 0 || images.callCount() != 0 {
		t.Errorf("enrichers called %d/%d times, want 0", geo.callCount(), images.callCount())
	}
}

func TestEnricher_SkipsGeocodeWithoutLocation(t *testing.T) {
	geo := &stubGeocoder{lat: 1, lon: 2}
	e := NewEnricher(geo, nil, time.Second, 1)

	rec := &models.NewEvent{Name: "Online"}
	e.Enrich(context.Background(), rec)
	if geo.callCount() != 0 {
		t.Errorf("geocoder called %d times for a record without location", geo.callCount())
	}
}

func TestEnricher_FailureSwallowed(t *testing.T) {
	e := NewEnricher(&stubGeocoder{err: errors.New("quota")}, &stubImages{err: errors.New("quota")}, time.Second, 2)
	records := []*models.NewEvent{
		{Name: "One", Location: "Kyoto"},
		{Name: "Two", Location: "Nara"},
	}
	e.EnrichAll(context.Background(), records)
	for _, rec := range records {
		if rec.HasCoordinates() || rec.ImageURL != "" {
			t.Errorf("record %q changed after failed enrichment", rec.Name)
		}
	}
}

func TestEnricher_TimeoutIsEnrichError(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	e := NewEnricher(&stubGeocoder{release: release}, nil, 20*time.Millisecond, 1)
	rec := &models.NewEvent{Name: "Slow", Location: "Far away"}

	start := time.Now()
	err := e.geocode(context.Background(), rec)
	if !IsKind(err, KindEnrich) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("geocode() error = %v, want enrich error wrapping DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("geocode() took %v, want about the timeout", elapsed)
	}
}

func TestEnrichAll_BoundedConcurrency(t *testing.T) {
	var inFlight, peak int32
	geo := geocoderFunc(func(ctx context.Context, _ string) (float64, float64, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 1, 1, nil
	})

	e := NewEnricher(geo, nil, time.Second, 2)
	records := make([]*models.NewEvent, 8)
	for i := range records {
		records[i] = &models.NewEvent{Name: "E", Location: "L"}
	}
	e.EnrichAll(context.Background(), records)

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", got)
	}
	for i, rec := range records {
		if !rec.HasCoordinates() {
			t.Errorf("records[%d] not enriched", i)
		}
	}
}

type geocoderFunc func(ctx context.Context, location string) (float64, float64, error)

func (f geocoderFunc) Geocode(ctx context.Context, location string) (float64, float64, error) {
	return f(ctx, location)
}

func TestNominatimGeocoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "eventhub-test" {
			t.Errorf("User-Agent = %q, want eventhub-test", ua)
		}
		switch r.URL.Query().Get("q") {
		case "Tokyo Station":
			_, _ = w.Write([]byte(`[{"lat": "35.6812", "lon": "139.7671", "display_name": "Tokyo Station"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	g := NewNominatimGeocoder(config.GeocodeConfig{URL: server.URL, UserAgent: "eventhub-test", RatePerSecond: 100}, server.Client())

	lat, lon, err := g.Geocode(context.Background(), "Tokyo Station")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if lat != 35.6812 || lon != 139.7671 {
		t.Errorf("Geocode() = %v,%v", lat, lon)
	}

	if _, _, err := g.Geocode(context.Background(), "Nowhere"); err == nil {
		t.Error("Geocode(no result) expected error")
	}
}

func TestUnsplashImageFinder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Client-ID key123" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Query().Get("query") == "empty" {
			_, _ = w.Write([]byte(`{"results": []}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": [{"urls": {"regular": "https://images.example/r.jpg", "small": "https://images.example/s.jpg"}}]}`))
	}))
	defer server.Close()

	f := NewUnsplashImageFinder(config.ImageConfig{URL: server.URL, AccessKey: "key123"}, server.Client())

	url, err := f.FindImage(context.Background(), "Go Meetup")
	if err != nil {
		t.Fatalf("FindImage() error = %v", err)
	}
	if url != "https://images.example/r.jpg" {
		t.Errorf("FindImage() = %q", url)
	}
	if _, err := f.FindImage(context.Background(), "empty"); err == nil {
		t.Error("FindImage(no result) expected error")
	}
}

func TestCachedEnrichers(t *testing.T) {
	cache, err := OpenEnrichmentCache("", time.Hour)
	if err != nil {
		t.Fatalf("OpenEnrichmentCache() error = %v", err)
	}
	defer cache.Close()

	geo := &stubGeocoder{lat: 34.7, lon: 135.5}
	cg := NewCachedGeocoder(geo, cache)
	for i := 0; i < 3; i++ {
		lat, lon, err := cg.Geocode(context.Background(), " Osaka ")
		if err != nil || lat != 34.7 || lon != 135.5 {
			t.Fatalf("Geocode() = %v,%v,%v", lat, lon, err)
		}
	}
	if geo.callCount() != 1 {
		t.Errorf("underlying geocoder called %d times, want 1", geo.callCount())
	}

	failing := &stubGeocoder{err: errors.New("down")}
	cf := NewCachedGeocoder(failing, cache)
	for i := 0; i < 2; i++ {
		if _, _, err := cf.Geocode(context.Background(), "Nagoya"); err == nil {
			t.Fatal("Geocode() expected error")
		}
	}
	if failing.callCount() != 2 {
		t.Errorf("failures were cached: called %d times, want 2", failing.callCount())
	}

	images := &stubImages{url: "https://img/1.jpg"}
	ci := NewCachedImageFinder(images, cache)
	for i := 0; i < 2; i++ {
		url, err := ci.FindImage(context.Background(), "Go Meetup")
		if err != nil || url != "https://img/1.jpg" {
			t.Fatalf("FindImage() = %q, %v", url, err)
		}
	}
	if images.callCount() != 1 {
		t.Errorf("underlying image finder called %d times, want 1", images.callCount())
	}
}

func TestEnrichmentCache_CollectGarbage(t *testing.T) {
	cache, err := OpenEnrichmentCache("", time.Hour)
	if err != nil {
		t.Fatalf("OpenEnrichmentCache() error = %v", err)
	}
	defer cache.Close()
	if err := cache.CollectGarbage(); err != nil {
		t.Errorf("in-memory CollectGarbage() error = %v", err)
	}

	disk, err := OpenEnrichmentCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("OpenEnrichmentCache(dir) error = %v", err)
	}
	defer disk.Close()
	if err := disk.CollectGarbage(); err != nil {
		t.Errorf("CollectGarbage() error = %v", err)
	}
}
