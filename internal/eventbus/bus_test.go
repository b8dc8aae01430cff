// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/models"
)

func testEvent() *models.Event {
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return &models.Event{
		ID:         "11111111-2222-3333-4444-555555555555",
		Name:       "Go Conference",
		SourceType: models.SourceConnpass,
		URL:        "https://connpass.com/event/1/",
		StartDate:  &start,
	}
}

func TestNew_DefaultsToChannelBackend(t *testing.T) {
	bus, err := New(config.MessagingConfig{Buffer: 8})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer bus.Close()

	if bus.Backend() != BackendChannel {
		t.Errorf("Backend() = %q, want %q", bus.Backend(), BackendChannel)
	}
}

func TestBus_PublishEventSynced(t *testing.T) {
	bus := NewChannelBus(8, watermill.NopLogger{})
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := bus.Subscribe(ctx, TopicEventsSynced)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := bus.PublishEventSynced(context.Background(), testEvent()); err != nil {
		t.Fatalf("PublishEventSynced() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		got, err := DecodeEventSynced(msg.Payload)
		if err != nil {
			t.Fatalf("DecodeEventSynced() error = %v", err)
		}
		if got.ID != testEvent().ID || got.Name != "Go Conference" || got.SourceType != models.SourceConnpass {
			t.Errorf("message = %+v", got)
		}
		if got.StartDate == nil || *got.StartDate != "2026-03-14" {
			t.Errorf("StartDate = %v, want 2026-03-14", got.StartDate)
		}
		if msg.Metadata.Get("source_type") != models.SourceConnpass {
			t.Errorf("source_type metadata = %q", msg.Metadata.Get("source_type"))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestBus_ClosedRejectsPublish(t *testing.T) {
	bus := NewChannelBus(0, nil)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	err := bus.PublishEventSynced(context.Background(), testEvent())
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("PublishEventSynced() error = %v, want ErrBusClosed", err)
	}
	if _, err := bus.Subscribe(context.Background(), TopicEventsSynced); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Subscribe() error = %v, want ErrBusClosed", err)
	}
}

func TestEventSyncedMessage_UnsetDate(t *testing.T) {
	ev := testEvent()
	ev.StartDate = nil

	data, err := NewEventSyncedMessage(ev).Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeEventSynced(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.StartDate != nil {
		t.Errorf("StartDate = %v, want nil", *got.StartDate)
	}

	if _, err := DecodeEventSynced([]byte(`{"name":"no id"}`)); err == nil {
		t.Error("DecodeEventSynced() without id: expected error")
	}
	if _, err := DecodeEventSynced([]byte(`not json`)); err == nil {
		t.Error("DecodeEventSynced(garbage): expected error")
	}
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
	types    []string
	got      chan struct{}
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{got: make(chan struct{}, 16)}
}

func (r *recordingBroadcaster) BroadcastJSON(messageType string, data interface{}) {
	r.mu.Lock()
	r.types = append(r.types, messageType)
	r.messages = append(r.messages, data)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func TestForwarder_RelaysToBroadcaster(t *testing.T) {
	bus := NewChannelBus(8, nil)
	defer bus.Close()

	rb := newRecordingBroadcaster()
	fwd := NewForwarder(bus, rb)
	if err := fwd.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer fwd.Stop()

	// A malformed payload is dropped without stopping the forwarder.
	if err := bus.Publish(TopicEventsSynced, message.NewMessage(watermill.NewUUID(), []byte("{"))); err != nil {
		t.Fatal(err)
	}
	if err := bus.PublishEventSynced(context.Background(), testEvent()); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rb.got:
	case <-time.After(5 * time.Second):
		t.Fatal("forwarder did not broadcast")
	}

	rb.mu.Lock()
	defer rb.mu.Unlock()
	if len(rb.types) != 1 || rb.types[0] != MessageTypeEventSynced {
		t.Fatalf("broadcast types = %v, want one %s", rb.types, MessageTypeEventSynced)
	}
	msg, ok := rb.messages[0].(*EventSyncedMessage)
	if !ok || msg.ID != testEvent().ID {
		t.Errorf("broadcast data = %#v", rb.messages[0])
	}
}

func TestForwarder_StartStop(t *testing.T) {
	bus := NewChannelBus(0, nil)
	defer bus.Close()

	fwd := NewForwarder(bus, newRecordingBroadcaster())
	if err := fwd.Stop(); err != nil {
		t.Errorf("Stop() before Start error = %v", err)
	}
	if err := fwd.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := fwd.Start(context.Background()); err != nil {
		t.Errorf("second Start() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- fwd.Stop() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return")
	}
}

func TestForwarder_SubscribeError(t *testing.T) {
	bus := NewChannelBus(0, nil)
	_ = bus.Close()

	if err := NewForwarder(bus, newRecordingBroadcaster()).Start(context.Background()); err == nil {
		t.Error("Start() on closed bus: expected error")
	}
}
