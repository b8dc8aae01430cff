// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package websocket provides the live feed of newly synced events.

The Hub keeps the set of connected clients and fans broadcast messages out to
them. Each Client owns two goroutines: readPump handles pings and detects
disconnects, writePump serializes outgoing messages and keepalive pings.

# Message Format

All messages are JSON objects with a type and a data field:

	{"type": "event_synced", "data": {"id": "...", "name": "...", "source_type": "connpass", "start_date": "2026-03-14"}}

Clients may send {"type": "ping"} and receive {"type": "pong"}.

# Delivery

Broadcasts are non-blocking. When the broadcast queue is full the message is
dropped with a warning; when a client's send buffer is full the client is
disconnected. Clients are visited in connection order so delivery is
deterministic within a process.

# Lifecycle

RunWithContext is meant for supervision. On cancellation it closes every
client's send channel, which makes writePump send a close frame, and
returns ctx.Err().
*/
package websocket
