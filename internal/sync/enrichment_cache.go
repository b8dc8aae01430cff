// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/metrics"
)

// Key prefixes for the enrichment cache.
const (
	geocodeKeyPrefix = "geo:"
	imageKeyPrefix   = "img:"
)

// EnrichmentCache stores successful enrichment lookups in BadgerDB so
// repeated sync runs do not hit the third-party services for the same
// location or event name.
type EnrichmentCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenEnrichmentCache opens a Badger cache at path. An empty path keeps the
// cache in memory.
func OpenEnrichmentCache(path string, ttl time.Duration) (*EnrichmentCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open enrichment cache: %w", err)
	}
	return &EnrichmentCache{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (c *EnrichmentCache) Close() error {
	return c.db.Close()
}

// CollectGarbage rewrites value log files until Badger reports nothing
// left to reclaim. In-memory caches have no value log and return nil.
func (c *EnrichmentCache) CollectGarbage() error {
	for {
		err := c.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("enrichment cache gc: %w", err)
		}
	}
}

func cacheKey(prefix, value string) []byte {
	return []byte(prefix + strings.ToLower(strings.TrimSpace(value)))
}

// get decodes the cached value for key into dst. It reports false on a miss.
func (c *EnrichmentCache) get(key []byte, dst interface{}) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *EnrichmentCache) set(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

type cachedCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CachedGeocoder serves repeated locations from the cache. Only successful
// lookups are cached.
type CachedGeocoder struct {
	next  Geocoder
	cache *EnrichmentCache
}

// NewCachedGeocoder wraps next with cache.
func NewCachedGeocoder(next Geocoder, cache *EnrichmentCache) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache}
}

// Geocode implements Geocoder.
func (g *CachedGeocoder) Geocode(ctx context.Context, location string) (float64, float64, error) {
	key := cacheKey(geocodeKeyPrefix, location)

	var hit cachedCoordinates
	found, err := g.cache.get(key, &hit)
	if err != nil {
		logging.Debug().Err(err).Msg("Geocode cache read failed")
	}
	metrics.RecordCacheLookup(enrichGeocode, found)
	if found {
		return hit.Lat, hit.Lon, nil
	}

	lat, lon, err := g.next.Geocode(ctx, location)
	if err != nil {
		return 0, 0, err
	}
	if err := g.cache.set(key, cachedCoordinates{Lat: lat, Lon: lon}); err != nil {
		logging.Debug().Err(err).Msg("Geocode cache write failed")
	}
	return lat, lon, nil
}

// CachedImageFinder serves repeated event names from the cache.
type CachedImageFinder struct {
	next  ImageFinder
	cache *EnrichmentCache
}

// NewCachedImageFinder wraps next with cache.
func NewCachedImageFinder(next ImageFinder, cache *EnrichmentCache) *CachedImageFinder {
	return &CachedImageFinder{next: next, cache: cache}
}

// FindImage implements ImageFinder.
func (f *CachedImageFinder) FindImage(ctx context.Context, name string) (string, error) {
	key := cacheKey(imageKeyPrefix, name)

	var hit string
	found, err := f.cache.get(key, &hit)
	if err != nil {
		logging.Debug().Err(err).Msg("Image cache read failed")
	}
	metrics.RecordCacheLookup(enrichImage, found)
	if found {
		return hit, nil
	}

	url, err := f.next.FindImage(ctx, name)
	if err != nil {
		return "", err
	}
	if url != "" {
		if err := f.cache.set(key, url); err != nil {
			logging.Debug().Err(err).Msg("Image cache write failed")
		}
	}
	return url, nil
}
