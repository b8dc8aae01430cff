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

// doorkeeperItem is one element of the top-level array.
type doorkeeperItem struct {
	Event *doorkeeperEvent `json:"event"`
}

type doorkeeperEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PublicURL   string `json:"public_url"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	Address     string `json:"address"`
	VenueName   string `json:"venue_name"`
	Banner      string `json:"banner"`
}

// DoorkeeperSource reads the Doorkeeper public events API.
type DoorkeeperSource struct {
	httpSource
}

// NewDoorkeeperSource creates the Doorkeeper adapter. A configured Token is
// sent as a bearer token.
func NewDoorkeeperSource(cfg config.SourceConfig, pageSize int, client *http.Client) *DoorkeeperSource {
	s := &DoorkeeperSource{httpSource: newHTTPSource(models.SourceDoorkeeper, cfg, pageSize, client)}
	if cfg.Token != "" {
		s.header.Set("Authorization", "Bearer "+cfg.Token)
	}
	return s
}

// Fetch retrieves one page of Doorkeeper events sorted by start time.
func (s *DoorkeeperSource) Fetch(ctx context.Context) ([]*models.NewEvent, error) {
	reqURL := fmt.Sprintf("%s/events?sort=starts_at&per_page=%d", s.baseURL, s.pageSize)
	resp, err := getJSON[[]doorkeeperItem](ctx, s.client, reqURL, s.header)
	if err != nil {
		return nil, FetchError(s.name, err)
	}
	return mapItems(s.name, *resp, mapDoorkeeperItem), nil
}

func mapDoorkeeperItem(item doorkeeperItem) *models.NewEvent {
	e := item.Event
	if e == nil {
		return nil
	}
	return &models.NewEvent{
		EventType:   "community",
		Name:        e.Title,
		StartDate:   parseEventDate(e.StartsAt),
		EndDate:     parseEventDate(e.EndsAt),
		Description: e.Description,
		Location:    firstNonEmpty(e.Address, e.VenueName),
		URL:         e.PublicURL,
		ImageURL:    e.Banner,
	}
}
