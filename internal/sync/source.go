// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// Source fetches one bounded page of listings from a single upstream and
// maps them to canonical records. Fetch fails only with a KindFetch
// SyncError; malformed items are dropped, never reported individually.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]*models.NewEvent, error)
}

// httpSource holds what every HTTP adapter needs.
type httpSource struct {
	name     string
	baseURL  string
	pageSize int
	client   *http.Client
	header   http.Header
}

func newHTTPSource(name string, cfg config.SourceConfig, pageSize int, client *http.Client) httpSource {
	if pageSize <= 0 {
		pageSize = 100
	}
	return httpSource{
		name:     name,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: pageSize,
		client:   client,
		header:   http.Header{},
	}
}

// Name returns the source identifier stored in source_type.
func (s *httpSource) Name() string {
	return s.name
}

// mapItems converts raw items with fn, stamps the source type and drops
// items without a usable name. Drops are logged once per fetch.
func mapItems[T any](source string, items []T, fn func(T) *models.NewEvent) []*models.NewEvent {
	records := make([]*models.NewEvent, 0, len(items))
	dropped := 0
	for _, item := range items {
		rec := fn(item)
		if rec == nil {
			dropped++
			continue
		}
		rec.SourceType = source
		rec.Normalize()
		if rec.Name == "" {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		metrics.RecordItemsDropped(source, dropped)
		logging.Debug().
			Str("source", source).
			Int("dropped", dropped).
			Int("kept", len(records)).
			Msg("Dropped upstream items without a usable name")
	}
	return records
}

// NewSources builds the enabled adapters, each behind its own circuit breaker.
func NewSources(cfg *config.Config, client *http.Client) []Source {
	var sources []Source
	page := cfg.Sync.PageSize
	if cfg.Sources.Connpass.Enabled {
		sources = append(sources, newBreakerSource(NewConnpassSource(cfg.Sources.Connpass, page, client), cfg.Sync))
	}
	if cfg.Sources.Doorkeeper.Enabled {
		sources = append(sources, newBreakerSource(NewDoorkeeperSource(cfg.Sources.Doorkeeper, page, client), cfg.Sync))
	}
	if cfg.Sources.Peatix.Enabled {
		sources = append(sources, newBreakerSource(NewPeatixSource(cfg.Sources.Peatix, page, client), cfg.Sync))
	}
	return sources
}
