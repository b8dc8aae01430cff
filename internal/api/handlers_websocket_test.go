// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/eventhub/internal/eventbus"
	"github.com/tomtom215/eventhub/internal/models"
	ws "github.com/tomtom215/eventhub/internal/websocket"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"
}

func waitForClients(t *testing.T, hub *ws.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocket_ReceivesSyncedEvents(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil)

	bus := eventbus.NewChannelBus(16, nil)
	t.Cleanup(func() { _ = bus.Close() })
	forwarder := eventbus.NewForwarder(bus, env.hub)
	if err := forwarder.Start(context.Background()); err != nil {
		t.Fatalf("forwarder.Start() error = %v", err)
	}
	t.Cleanup(func() { _ = forwarder.Stop() })

	server := httptest.NewServer(env.handler)
	t.Cleanup(server.Close)

	header := http.Header{"Origin": []string{testOrigin}}
	conn, resp, err := gorillaws.DefaultDialer.Dial(wsURL(server), header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d", resp.StatusCode)
	}
	waitForClients(t, env.hub, 1)

	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ev := &models.Event{ID: "evt-1", Name: "Go Conference", SourceType: models.SourceConnpass, StartDate: &start}
	if err := bus.PublishEventSynced(context.Background(), ev); err != nil {
		t.Fatalf("PublishEventSynced() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type string                      `json:"type"`
		Data eventbus.EventSyncedMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if msg.Type != ws.MessageTypeEventSynced {
		t.Errorf("type = %q, want %q", msg.Type, ws.MessageTypeEventSynced)
	}
	if msg.Data.ID != "evt-1" || msg.Data.SourceType != models.SourceConnpass {
		t.Errorf("data = %+v", msg.Data)
	}
	if msg.Data.StartDate == nil || *msg.Data.StartDate != "2026-03-14" {
		t.Errorf("start_date = %v", msg.Data.StartDate)
	}
}

func TestWebSocket_OriginCheck(t *testing.T) {
	env := newTestEnv(t, testConfig(), nil)
	server := httptest.NewServer(env.handler)
	t.Cleanup(server.Close)

	for _, origin := range []string{"", "http://evil.example"} {
		header := http.Header{}
		if origin != "" {
			header.Set("Origin", origin)
		}
		conn, resp, err := gorillaws.DefaultDialer.Dial(wsURL(server), header)
		if err == nil {
			conn.Close()
			t.Errorf("origin %q: dial succeeded, want rejection", origin)
			continue
		}
		if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Errorf("origin %q: response = %v, want 403", origin, resp)
		}
	}
	if n := env.hub.GetClientCount(); n != 0 {
		t.Errorf("client count = %d, want 0", n)
	}
}

func TestCheckWebSocketOrigin_Wildcard(t *testing.T) {
	cfg := testConfig()
	cfg.Security.CORSOrigins = []string{"*"}
	h := NewHandler(nil, nil, nil, nil, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	if !h.checkWebSocketOrigin(req) {
		t.Error("wildcard origin rejected")
	}
}
