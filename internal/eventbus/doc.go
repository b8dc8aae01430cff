// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

/*
Package eventbus announces newly synced events over a Watermill pub/sub.

The sync coordinator publishes one EventSyncedMessage per inserted event on
the events.synced topic. A Forwarder subscribes to that topic and broadcasts
each message to the WebSocket hub.

# Backends

Two backends are supported, selected by messaging.nats_url:

  - empty: Watermill's in-process gochannel pub/sub (the default)
  - set: watermill-nats over core NATS, with JetStream disabled

Delivery is best effort in both cases. A message published while no
subscriber is attached is dropped; the event itself is already persisted.

# Usage

	bus, err := eventbus.New(cfg.Messaging)
	if err != nil {
	    return err
	}
	defer bus.Close()

	coordinator := sync.NewCoordinator(sources, db, sync.WithPublisher(bus))
	forwarder := eventbus.NewForwarder(bus, hub)
*/
package eventbus
