// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/tomtom215/eventhub/internal/config"
)

// NominatimGeocoder resolves locations through a Nominatim-compatible
// search endpoint. Requests are throttled to the configured rate; the
// public Nominatim usage policy allows one request per second.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// NewNominatimGeocoder creates a geocoder. An empty URL yields a geocoder
// that always fails with ErrEnrichmentNotConfigured.
func NewNominatimGeocoder(cfg config.GeocodeConfig, client *http.Client) *NominatimGeocoder {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &NominatimGeocoder{
		client:    client,
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the coordinates of the best match for location.
func (g *NominatimGeocoder) Geocode(ctx context.Context, location string) (float64, float64, error) {
	if g.baseURL == "" {
		return 0, 0, ErrEnrichmentNotConfigured
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")
	header := http.Header{}
	if g.userAgent != "" {
		header.Set("User-Agent", g.userAgent)
	}

	places, err := getJSON[[]nominatimPlace](ctx, g.client, g.baseURL+"/search?"+params.Encode(), header)
	if err != nil {
		return 0, 0, err
	}
	if len(*places) == 0 {
		return 0, 0, fmt.Errorf("no geocoding result for %q", location)
	}

	place := (*places)[0]
	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", place.Lat, err)
	}
	lon, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", place.Lon, err)
	}
	return lat, lon, nil
}

// UnsplashImageFinder searches an Unsplash-compatible photo API.
type UnsplashImageFinder struct {
	client    *http.Client
	baseURL   string
	accessKey string
}

// NewUnsplashImageFinder creates an image finder. Without both a URL and an
// access key every lookup fails with ErrEnrichmentNotConfigured.
func NewUnsplashImageFinder(cfg config.ImageConfig, client *http.Client) *UnsplashImageFinder {
	return &UnsplashImageFinder{
		client:    client,
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		accessKey: cfg.AccessKey,
	}
}

type unsplashSearch struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}

// FindImage returns the URL of the first photo matching name.
func (f *UnsplashImageFinder) FindImage(ctx context.Context, name string) (string, error) {
	if f.baseURL == "" || f.accessKey == "" {
		return "", ErrEnrichmentNotConfigured
	}

	params := url.Values{}
	params.Set("query", name)
	params.Set("per_page", "1")
	header := http.Header{}
	header.Set("Authorization", "Client-ID "+f.accessKey)

	resp, err := getJSON[unsplashSearch](ctx, f.client, f.baseURL+"/search/photos?"+params.Encode(), header)
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", errors.New("no image result")
	}
	return firstNonEmpty(resp.Results[0].URLs.Regular, resp.Results[0].URLs.Small), nil
}
