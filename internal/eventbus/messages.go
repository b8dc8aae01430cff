// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package eventbus

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventhub/internal/models"
)

// TopicEventsSynced carries one message per event inserted by a sync run.
const TopicEventsSynced = "events.synced"

// EventSyncedMessage is the payload published on TopicEventsSynced.
type EventSyncedMessage struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SourceType string  `json:"source_type"`
	StartDate  *string `json:"start_date"`
	URL        string  `json:"url,omitempty"`
}

// NewEventSyncedMessage builds the payload for a persisted event.
func NewEventSyncedMessage(ev *models.Event) *EventSyncedMessage {
	msg := &EventSyncedMessage{
		ID:         ev.ID,
		Name:       ev.Name,
		SourceType: ev.SourceType,
		URL:        ev.URL,
	}
	if ev.StartDate != nil {
		d := ev.StartDate.Format("2006-01-02")
		msg.StartDate = &d
	}
	return msg
}

// Marshal serializes the message to JSON.
func (m *EventSyncedMessage) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal event synced message: %w", err)
	}
	return data, nil
}

// DecodeEventSynced parses a payload published on TopicEventsSynced.
func DecodeEventSynced(data []byte) (*EventSyncedMessage, error) {
	var m EventSyncedMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal event synced message: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("event synced message has no id")
	}
	return &m, nil
}
