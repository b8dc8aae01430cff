// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/models"
)

type connpassResponse struct {
	Events []connpassEvent `json:"events"`
}

type connpassEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EventURL    string `json:"event_url"`
	StartedAt   string `json:"started_at"`
	EndedAt     string `json:"ended_at"`
	Address     string `json:"address"`
	Place       string `json:"place"`
}

// ConnpassSource reads the connpass event search API.
type ConnpassSource struct {
	httpSource
}

// NewConnpassSource creates the connpass adapter. A configured APIKey is
// sent as X-API-Key.
func NewConnpassSource(cfg config.SourceConfig, pageSize int, client *http.Client) *ConnpassSource {
	s := &ConnpassSource{httpSource: newHTTPSource(models.SourceConnpass, cfg, pageSize, client)}
	if cfg.APIKey != "" {
		s.header.Set("X-API-Key", cfg.APIKey)
	}
	return s
}

// Fetch retrieves one page of connpass events.
func (s *ConnpassSource) Fetch(ctx context.Context) ([]*models.NewEvent, error) {
	reqURL := fmt.Sprintf("%s/api/v1/event/?count=%d", s.baseURL, s.pageSize)
	resp, err := getJSON[connpassResponse](ctx, s.client, reqURL, s.header)
	if err != nil {
		return nil, FetchError(s.name, err)
	}
	return mapItems(s.name, resp.Events, mapConnpassEvent), nil
}

func mapConnpassEvent(e connpassEvent) *models.NewEvent {
	return &models.NewEvent{
		EventType:   "tech",
		Name:        e.Title,
		StartDate:   parseEventDate(e.StartedAt),
		EndDate:     parseEventDate(e.EndedAt),
		Description: e.Description,
		Location:    firstNonEmpty(e.Address, e.Place),
		URL:         e.EventURL,
	}
}
