// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// StatusRecorder persists the outcome of each adapter fetch.
type StatusRecorder interface {
	RecordSourceResult(ctx context.Context, source string, fetched int, fetchErr error) error
}

// EventPublisher announces newly inserted events.
type EventPublisher interface {
	PublishEventSynced(ctx context.Context, ev *models.Event) error
}

// RunReport is the bookkeeping of one sync run.
type RunReport struct {
	StartedAt    time.Time         `json:"started_at"`
	Duration     time.Duration     `json:"duration"`
	Fetched      int               `json:"fetched"`
	Inserted     int               `json:"inserted"`
	Skipped      int               `json:"skipped"`
	StoreErrors  int               `json:"store_errors"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
}

// CoordinatorOption configures optional Coordinator collaborators.
type CoordinatorOption func(*Coordinator)

// WithEnricher enables best-effort enrichment.
func WithEnricher(e *Enricher) CoordinatorOption {
	return func(c *Coordinator) { c.enricher = e }
}

// WithStatusRecorder records per-source fetch outcomes.
func WithStatusRecorder(r StatusRecorder) CoordinatorOption {
	return func(c *Coordinator) { c.status = r }
}

// WithPublisher publishes every inserted event.
func WithPublisher(p EventPublisher) CoordinatorOption {
	return func(c *Coordinator) { c.publisher = p }
}

// Coordinator runs the fetch, enrich and write pipeline. It holds no lock;
// callers that need at most one concurrent run use Manager.
type Coordinator struct {
	sources   []Source
	writer    *DedupWriter
	enricher  *Enricher
	status    StatusRecorder
	publisher EventPublisher
}

// NewCoordinator creates a Coordinator over the given adapters and store.
func NewCoordinator(sources []Source, store EventStore, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		sources: sources,
		writer:  NewDedupWriter(store),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SyncExternalEvents runs one sync and returns the number of inserted
// events. Upstream, enrichment and per-record store failures are contained;
// zero reachable sources yields (0, nil).
func (c *Coordinator) SyncExternalEvents(ctx context.Context) (int, error) {
	report, err := c.Run(ctx)
	if err != nil {
		return 0, err
	}
	return report.Inserted, nil
}

// Run is SyncExternalEvents with the full report. The only error is a
// context that was already done on entry.
func (c *Coordinator) Run(ctx context.Context) (*RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sync not started: %w", err)
	}

	report := &RunReport{StartedAt: time.Now()}
	log := logging.Ctx(ctx)

	records := c.fetchAll(ctx, report)
	report.Fetched = len(records)

	if c.enricher != nil {
		c.enricher.EnrichAll(ctx, records)
	}

	for _, rec := range records {
		outcome, ev, err := c.writer.WriteIfNew(ctx, rec)
		if err != nil {
			report.StoreErrors++
			log.Warn().Err(err).Str("source", rec.SourceType).Str("event", rec.Name).Msg("Failed to store synced event")
			continue
		}
		if outcome == Skipped {
			report.Skipped++
			continue
		}
		report.Inserted++
		c.publish(ctx, ev)
	}

	report.Duration = time.Since(report.StartedAt)
	log.Info().
		Int("fetched", report.Fetched).
		Int("inserted", report.Inserted).
		Int("skipped", report.Skipped).
		Int("store_errors", report.StoreErrors).
		Int("failed_sources", len(report.SourceErrors)).
		Dur("duration", report.Duration).
		Msg("External event sync completed")
	return report, nil
}

type fetchResult struct {
	records []*models.NewEvent
	err     error
}

// fetchAll queries every adapter concurrently and concatenates the records
// of those that succeeded.
func (c *Coordinator) fetchAll(ctx context.Context, report *RunReport) []*models.NewEvent {
	results := make([]fetchResult, len(c.sources))

	var wg sync.WaitGroup
	for i, src := range c.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			records, err := src.Fetch(ctx)
			results[i] = fetchResult{records: records, err: err}
		}(i, src)
	}
	wg.Wait()

	var all []*models.NewEvent
	for i, src := range c.sources {
		res := results[i]
		name := src.Name()
		metrics.RecordSourceFetch(name, len(res.records), res.err)
		c.recordStatus(ctx, name, len(res.records), res.err)

		if res.err != nil {
			if report.SourceErrors == nil {
				report.SourceErrors = make(map[string]string)
			}
			report.SourceErrors[name] = res.err.Error()
			logging.Ctx(ctx).Warn().Err(res.err).Str("source", name).Msg("Source fetch failed")
			continue
		}
		all = append(all, res.records...)
	}
	return all
}

func (c *Coordinator) recordStatus(ctx context.Context, source string, fetched int, fetchErr error) {
	if c.status == nil {
		return
	}
	if err := c.status.RecordSourceResult(ctx, source, fetched, fetchErr); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", source).Msg("Failed to record source status")
	}
}

func (c *Coordinator) publish(ctx context.Context, ev *models.Event) {
	if c.publisher == nil || ev == nil {
		return
	}
	if err := c.publisher.PublishEventSynced(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("event_id", ev.ID).Msg("Failed to publish synced event")
	}
}
