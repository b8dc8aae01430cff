// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures inside a sync run.
type ErrorKind int

const (
	// KindFetch is a transport or envelope failure of one adapter.
	KindFetch ErrorKind = iota + 1
	// KindEnrich is a failed or timed-out enrichment call.
	KindEnrich
	// KindStore is a persistence failure for one record.
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindEnrich:
		return "enrich"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

var (
	// ErrSyncInProgress is returned by Manager.TriggerSync while another run holds the lock.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrEnrichmentNotConfigured is the cause of every EnrichError from an
	// enricher whose endpoint or credentials are missing.
	ErrEnrichmentNotConfigured = errors.New("enrichment not configured")
)

// SyncError carries the kind and origin of a contained failure.
type SyncError struct {
	Kind ErrorKind
	// Source is the adapter name for fetch errors, the enrichment kind
	// (geocode, image) for enrich errors and the record name for store errors.
	Source string
	Cause  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s error (%s): %v", e.Kind, e.Source, e.Cause)
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

// FetchError wraps an adapter failure.
func FetchError(source string, cause error) *SyncError {
	return &SyncError{Kind: KindFetch, Source: source, Cause: cause}
}

// EnrichError wraps an enrichment failure.
func EnrichError(kind string, cause error) *SyncError {
	return &SyncError{Kind: KindEnrich, Source: kind, Cause: cause}
}

// StoreError wraps a persistence failure.
func StoreError(record string, cause error) *SyncError {
	return &SyncError{Kind: KindStore, Source: record, Cause: cause}
}

// IsKind reports whether err is, or wraps, a SyncError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var se *SyncError
	return errors.As(err, &se) && se.Kind == k
}
