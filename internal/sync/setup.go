// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"net/http"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/logging"
)

// NewEnricherFromConfig builds the geocoding and image enrichers, fronted by
// cache when it is non-nil. Missing endpoints or keys do not disable the
// Enricher: the affected lookups fail with ErrEnrichmentNotConfigured and
// are skipped per record.
func NewEnricherFromConfig(cfg config.EnrichmentConfig, client *http.Client, cache *EnrichmentCache) *Enricher {
	var (
		geocoder Geocoder    = NewNominatimGeocoder(cfg.Geocode, client)
		images   ImageFinder = NewUnsplashImageFinder(cfg.Image, client)
	)
	if cache != nil {
		geocoder = NewCachedGeocoder(geocoder, cache)
		images = NewCachedImageFinder(images, cache)
	}

	logging.Info().
		Bool("geocode_configured", cfg.Geocode.URL != "").
		Bool("image_configured", cfg.Image.URL != "" && cfg.Image.AccessKey != "").
		Dur("timeout", cfg.Timeout).
		Int("concurrency", cfg.Concurrency).
		Msg("Enrichment configured")

	return NewEnricher(geocoder, images, cfg.Timeout, cfg.Concurrency)
}
