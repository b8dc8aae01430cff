// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package sync pulls events from third-party listing services into the local
catalog.

# Pipeline

A sync run flows strictly downstream:

	Source adapters (connpass, doorkeeper, peatix)   fetched concurrently
	        |
	Enricher (geocode, image lookup)                  best-effort, bounded
	        |
	DedupWriter                                       URL first, then name+date
	        |
	EventStore (DuckDB) and the event bus

Every adapter is independent. A failing upstream contributes zero records and
never aborts the run; if every upstream fails the run still completes and
reports zero inserted events.

# Failure Kinds

Failures below the Coordinator are classified by ErrorKind:

  - KindFetch: transport failure, non-200 status or an unparseable envelope
    from one adapter.
  - KindEnrich: any enrichment failure or timeout. The field stays unset.
  - KindStore: a persistence failure for one record. The record is skipped.

Use IsKind to classify an error returned from this package.

# Serialization

The Coordinator performs no locking. Manager owns the advisory lock: an
overlapping TriggerSync returns ErrSyncInProgress and a scheduled tick that
finds a run in progress is skipped.

# Dedup Equivalence

A record with a URL matches an existing event with the same URL, ignoring
every other field. A record without a URL matches an existing event with the
same name and start date, where two unset dates are equal. The
check-then-insert is not atomic; only sequential runs are idempotent.
*/
package sync
