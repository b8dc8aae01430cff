// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/models"
)

type peatixResponse struct {
	JSONData struct {
		Events []peatixEvent `json:"events"`
	} `json:"json_data"`
}

type peatixEvent struct {
	ID          flexibleID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Datetime    string     `json:"datetime"`
	EndDatetime string     `json:"end_datetime"`
	VenueName   string     `json:"venue_name"`
	Address     string     `json:"address"`
	Cover       string     `json:"cover"`
}

// flexibleID accepts an identifier sent as either a JSON number or string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// PeatixSource reads the Peatix event search endpoint.
type PeatixSource struct {
	httpSource
}

// NewPeatixSource creates the Peatix adapter.
func NewPeatixSource(cfg config.SourceConfig, pageSize int, client *http.Client) *PeatixSource {
	return &PeatixSource{httpSource: newHTTPSource(models.SourcePeatix, cfg, pageSize, client)}
}

// Fetch retrieves one page of Peatix events.
func (s *PeatixSource) Fetch(ctx context.Context) ([]*models.NewEvent, error) {
	reqURL := fmt.Sprintf("%s/search/events?size=%d", s.baseURL, s.pageSize)
	resp, err := getJSON[peatixResponse](ctx, s.client, reqURL, s.header)
	if err != nil {
		return nil, FetchError(s.name, err)
	}
	return mapItems(s.name, resp.JSONData.Events, s.mapEvent), nil
}

func (s *PeatixSource) mapEvent(e peatixEvent) *models.NewEvent {
	rec := &models.NewEvent{
		EventType:   "general",
		Name:        e.Name,
		StartDate:   parseEventDate(e.Datetime),
		EndDate:     parseEventDate(e.EndDatetime),
		Description: e.Description,
		Location:    firstNonEmpty(e.VenueName, e.Address),
		ImageURL:    e.Cover,
	}
	if e.ID != "" {
		rec.URL = fmt.Sprintf("%s/event/%s", s.baseURL, e.ID)
	}
	return rec
}
