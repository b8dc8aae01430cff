// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/eventhub/internal/logging"
)

// MessageTypeEventSynced is the WebSocket message type for forwarded events.
const MessageTypeEventSynced = "event_synced"

// Broadcaster fans a typed message out to live clients.
// Implemented by *websocket.Hub.
type Broadcaster interface {
	BroadcastJSON(messageType string, data interface{})
}

// Subscriber is the subscribe half of Bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// Forwarder relays events.synced messages to a Broadcaster.
type Forwarder struct {
	sub         Subscriber
	broadcaster Broadcaster

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// NewForwarder creates a forwarder from sub to broadcaster.
func NewForwarder(sub Subscriber, broadcaster Broadcaster) *Forwarder {
	return &Forwarder{sub: sub, broadcaster: broadcaster}
}

// Start subscribes and begins forwarding in the background.
func (f *Forwarder) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	messages, err := f.sub.Subscribe(runCtx, TopicEventsSynced)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe %s: %w", TopicEventsSynced, err)
	}

	f.running = true
	f.cancel = cancel
	f.doneCh = make(chan struct{})
	go f.loop(runCtx, messages, f.doneCh)

	logging.Info().Str("topic", TopicEventsSynced).Msg("Event forwarder started")
	return nil
}

// Stop cancels the subscription and waits for the loop to exit.
func (f *Forwarder) Stop() error {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = false
	cancel, done := f.cancel, f.doneCh
	f.mu.Unlock()

	cancel()
	<-done
	logging.Info().Msg("Event forwarder stopped")
	return nil
}

func (f *Forwarder) loop(ctx context.Context, messages <-chan *message.Message, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			f.handle(msg)
		}
	}
}

// handle acks every message; an undecodable payload is logged and dropped
// rather than redelivered.
func (f *Forwarder) handle(msg *message.Message) {
	defer msg.Ack()

	ev, err := DecodeEventSynced(msg.Payload)
	if err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed bus message")
		return
	}
	f.broadcaster.BroadcastJSON(MessageTypeEventSynced, ev)
}
