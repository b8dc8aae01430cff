// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/models"
)

func newJSONServer(t *testing.T, wantPath string, status int, body string, gotHeader *http.Header) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPath != "" && r.URL.Path != wantPath {
			t.Errorf("request path = %q, want %q", r.URL.Path, wantPath)
		}
		if gotHeader != nil {
			*gotHeader = r.Header.Clone()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

const connpassFiveItems = `{
  "results_returned": 5,
  "events": [
    {"title": "Go Conference", "event_url": "https://connpass.com/event/1/",
     "started_at": "2026-11-03T23:30:00+09:00", "ended_at": "2026-11-04T02:00:00+09:00",
     "address": "Shibuya, Tokyo", "place": "Hall A", "description": "gophers"},
    {"title": "Broken Date", "event_url": "https://connpass.com/event/2/",
     "started_at": "next tuesday", "address": "", "place": "Online"},
    {"title": "", "event_url": "https://connpass.com/event/3/",
     "started_at": "2026-11-05T19:00:00+09:00"},
    {"title": "Rust Night", "event_url": "https://connpass.com/event/4/",
     "started_at": "2026-11-06T19:00:00+09:00"},
    {"title": "Python Meetup", "event_url": "https://connpass.com/event/5/",
     "started_at": "2026-11-07T19:00:00+09:00"}
  ]
}`

func TestConnpassSource_MalformedItemTolerance(t *testing.T) {
	var header http.Header
	server := newJSONServer(t, "/api/v1/event/", http.StatusOK, connpassFiveItems, &header)

	src := NewConnpassSource(config.SourceConfig{BaseURL: server.URL, APIKey: "secret"}, 5, server.Client())
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("Fetch() returned %d records, want 4", len(records))
	}
	if header.Get("X-API-Key") != "secret" {
		t.Errorf("X-API-Key header = %q, want secret", header.Get("X-API-Key"))
	}

	first := records[0]
	if first.Name != "Go Conference" || first.SourceType != models.SourceConnpass || first.EventType != "tech" {
		t.Errorf("first record = %+v", first)
	}
	if first.StartDate == nil || !first.StartDate.Equal(*day(2026, 11, 3)) {
		t.Errorf("StartDate = %v, want 2026-11-03 (date in the upstream offset)", first.StartDate)
	}
	if first.EndDate == nil || !first.EndDate.Equal(*day(2026, 11, 4)) {
		t.Errorf("EndDate = %v, want 2026-11-04", first.EndDate)
	}
	if first.Location != "Shibuya, Tokyo" {
		t.Errorf("Location = %q, want address", first.Location)
	}
	if first.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", first.ImageURL)
	}

	broken := records[1]
	if broken.Name != "Broken Date" {
		t.Fatalf("records[1].Name = %q, want Broken Date", broken.Name)
	}
	if broken.StartDate != nil {
		t.Errorf("unparseable StartDate = %v, want nil", broken.StartDate)
	}
	if broken.Location != "Online" {
		t.Errorf("Location = %q, want place fallback", broken.Location)
	}

	for _, rec := range records {
		if rec.Name == "" {
			t.Error("record with empty name was not dropped")
		}
	}
}

func TestDoorkeeperSource_Mapping(t *testing.T) {
	body := `[
	  {"event": {"title": "Community Day", "public_url": "https://dk.example/events/9",
	             "starts_at": "2026-06-01T01:00:00.000Z", "ends_at": "2026-06-01T09:00:00.000Z",
	             "address": "", "venue_name": "Town Hall", "banner": "https://img.example/b.png"}},
	  {"event": null},
	  {"event": {"title": "   ", "public_url": "https://dk.example/events/10"}}
	]`
	var header http.Header
	server := newJSONServer(t, "/events", http.StatusOK, body, &header)

	src := NewDoorkeeperSource(config.SourceConfig{BaseURL: server.URL + "/", Token: "tok"}, 20, server.Client())
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Fetch() returned %d records, want 1", len(records))
	}
	if got := header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", got)
	}

	rec := records[0]
	if rec.SourceType != models.SourceDoorkeeper || rec.EventType != "community" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Location != "Town Hall" {
		t.Errorf("Location = %q, want venue fallback", rec.Location)
	}
	if rec.ImageURL != "https://img.example/b.png" {
		t.Errorf("ImageURL = %q, want banner", rec.ImageURL)
	}
	if rec.URL != "https://dk.example/events/9" {
		t.Errorf("URL = %q", rec.URL)
	}
	if rec.StartDate == nil || !rec.StartDate.Equal(*day(2026, 6, 1)) {
		t.Errorf("StartDate = %v", rec.StartDate)
	}
}

func TestPeatixSource_Mapping(t *testing.T) {
	body := `{"json_data": {"events": [
	  {"id": 12345, "name": "Numeric ID", "datetime": "2026-07-01T10:00:00+09:00",
	   "venue_name": "Studio", "address": "Minato", "cover": "https://img.example/c.jpg"},
	  {"id": "abc", "name": "String ID", "datetime": "2026-07-02T10:00:00+09:00", "address": "Minato"},
	  {"name": "No ID"}
	]}}`
	server := newJSONServer(t, "/search/events", http.StatusOK, body, nil)

	src := NewPeatixSource(config.SourceConfig{BaseURL: server.URL}, 10, server.Client())
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Fetch() returned %d records, want 3", len(records))
	}

	if want := server.URL + "/event/12345"; records[0].URL != want {
		t.Errorf("records[0].URL = %q, want %q", records[0].URL, want)
	}
	if records[0].Location != "Studio" {
		t.Errorf("records[0].Location = %q, want venue_name first", records[0].Location)
	}
	if records[0].EventType != "general" || records[0].ImageURL != "https://img.example/c.jpg" {
		t.Errorf("records[0] = %+v", records[0])
	}
	if want := server.URL + "/event/abc"; records[1].URL != want {
		t.Errorf("records[1].URL = %q, want %q", records[1].URL, want)
	}
	if records[2].URL != "" {
		t.Errorf("records[2].URL = %q, want empty", records[2].URL)
	}
}

func TestSources_FetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200 status", status: http.StatusServiceUnavailable, body: `{"error":"down"}`},
		{name: "unparseable envelope", status: http.StatusOK, body: `<html>maintenance</html>`},
		{name: "wrong envelope shape", status: http.StatusOK, body: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newJSONServer(t, "", tt.status, tt.body, nil)
			src := NewConnpassSource(config.SourceConfig{BaseURL: server.URL}, 10, server.Client())

			records, err := src.Fetch(context.Background())
			if err == nil {
				t.Fatalf("Fetch() = %d records, want error", len(records))
			}
			if !IsKind(err, KindFetch) {
				t.Errorf("Fetch() error kind: got %v, want fetch", err)
			}
			if !strings.Contains(err.Error(), models.SourceConnpass) {
				t.Errorf("error %q does not name the source", err)
			}
		})
	}
}

func TestSources_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	src := NewPeatixSource(config.SourceConfig{BaseURL: url}, 10, NewHTTPClient(time.Second))
	if _, err := src.Fetch(context.Background()); !IsKind(err, KindFetch) {
		t.Errorf("Fetch() error = %v, want fetch error", err)
	}
}

func TestNewSources_OnlyEnabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sources.Connpass = config.SourceConfig{Enabled: true, BaseURL: "https://connpass.example"}
	cfg.Sources.Peatix = config.SourceConfig{Enabled: true, BaseURL: "https://peatix.example"}

	sources := NewSources(cfg, NewHTTPClient(time.Second))
	if len(sources) != 2 {
		t.Fatalf("NewSources() returned %d sources, want 2", len(sources))
	}
	if sources[0].Name() != models.SourceConnpass || sources[1].Name() != models.SourcePeatix {
		t.Errorf("source names = %s, %s", sources[0].Name(), sources[1].Name())
	}
}

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{in: "2026-05-01T10:00:00+09:00", want: day(2026, 5, 1)},
		{in: "2026-05-01T00:30:00+09:00", want: day(2026, 5, 1)},
		{in: "2026-05-01T23:30:00-05:00", want: day(2026, 5, 1)},
		{in: "2026-05-01T10:00:00.123Z", want: day(2026, 5, 1)},
		{in: "2026-05-01 10:00:00", want: day(2026, 5, 1)},
		{in: "2026-05-01", want: day(2026, 5, 1)},
		{in: "", want: nil},
		{in: "   ", want: nil},
		{in: "05/01/2026", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseEventDate(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("parseEventDate(%q) = %v, want nil", tt.in, got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Errorf("parseEventDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
