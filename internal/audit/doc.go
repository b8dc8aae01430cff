// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package audit records security-relevant events for forensic review.

Events cover authentication (successful and failed logins, lockouts),
account creation, authorization denials and administrative actions such
as manually triggered syncs. They are written asynchronously through a
buffered channel so request handlers never block on storage; when the
buffer is full the event is dropped with a warning.

# Storage

DuckDBStore keeps events in the audit_events table of the main database:

	logger := audit.NewLogger(audit.NewDuckDBStore(db.Conn()), &audit.Config{
	    Enabled:       true,
	    RetentionDays: 90,
	    BufferSize:    256,
	})
	defer logger.Close()

	logger.LogAuthFailure(ctx, "alice@example.com", "10.0.0.1", "invalid credentials")

# Retention

Prune deletes events older than RetentionDays. The supervisor runs it
periodically through Logger.CollectGarbage.
*/
package audit
