// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package services

import (
	"context"
	"time"

	"github.com/tomtom215/eventhub/internal/logging"
)

// GarbageCollector matches *sync.EnrichmentCache and *audit.Logger.
type GarbageCollector interface {
	CollectGarbage() error
}

// CacheGCService periodically runs a CollectGarbage pass: value log GC for
// the enrichment cache, retention pruning for the audit log.
type CacheGCService struct {
	cache    GarbageCollector
	interval time.Duration
	name     string
}

// NewCacheGCService runs cache.CollectGarbage every interval (default one
// hour).
func NewCacheGCService(cache GarbageCollector, interval time.Duration) *CacheGCService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CacheGCService{
		cache:    cache,
		interval: interval,
		name:     "enrichment-cache-gc",
	}
}

// NewAuditRetentionService prunes expired audit events every interval
// (default one hour).
func NewAuditRetentionService(pruner GarbageCollector, interval time.Duration) *CacheGCService {
	svc := NewCacheGCService(pruner, interval)
	svc.name = "audit-retention"
	return svc
}

// Serve implements suture.Service. GC errors are logged; the loop keeps
// running.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.cache.CollectGarbage(); err != nil {
				logging.Warn().Err(err).Str("service", s.name).Msg("Garbage collection failed")
				continue
			}
			logging.Debug().Str("service", s.name).Dur("duration", time.Since(start)).Msg("Garbage collection finished")
		}
	}
}

func (s *CacheGCService) String() string {
	return s.name
}
