// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eventhub/internal/database"
	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/models"
	"github.com/tomtom215/eventhub/internal/validation"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// ListEvents returns a filtered page of events.
//
// @Summary List events
// @Description Events ordered by start date, newest first. is_favorited is null for anonymous callers.
// @Tags Events
// @Produce json
// @Param event_type query string false "Exact event type"
// @Param location query string false "Case-insensitive substring of location"
// @Param source_type query string false "connpass, doorkeeper, peatix or user"
// @Param start_date_from query string false "YYYY-MM-DD, inclusive"
// @Param start_date_to query string false "YYYY-MM-DD, inclusive"
// @Param tags query string false "Comma-separated tag names"
// @Param search query string false "Substring of name, description or location"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20) maximum(100)
// @Success 200 {object} APIResponse{data=EventListResponse}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	query := EventListQuery{
		EventType:     q.Get("event_type"),
		Location:      q.Get("location"),
		SourceType:    q.Get("source_type"),
		StartDateFrom: q.Get("start_date_from"),
		StartDateTo:   q.Get("start_date_to"),
		Tags:          q.Get("tags"),
		Search:        q.Get("search"),
		Page:          getIntParam(r, "page", defaultPage),
		Limit:         getIntParam(r, "limit", defaultLimit),
	}
	if !validateQuery(rw, &query) {
		return
	}

	filter := &models.EventFilter{
		EventType:     strings.TrimSpace(query.EventType),
		Location:      strings.TrimSpace(query.Location),
		SourceType:    query.SourceType,
		Search:        strings.TrimSpace(query.Search),
		Tags:          parseCommaSeparated(query.Tags),
		StartDateFrom: parseDate(query.StartDateFrom),
		StartDateTo:   parseDate(query.StartDateTo),
		Limit:         query.Limit,
		Offset:        (query.Page - 1) * query.Limit,
	}

	events, total, err := h.store.ListEvents(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	withTags, err := h.decorateEvents(r.Context(), currentUserID(r), events)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(EventListResponse{
		Events: withTags,
		Total:  total,
		Page:   query.Page,
		Limit:  query.Limit,
	}, &PaginationMeta{
		Page:    query.Page,
		Limit:   query.Limit,
		Total:   total,
		Count:   len(withTags),
		HasMore: int64(filter.Offset+len(withTags)) < total,
	})
}

// GetEvent returns one event with its tags.
//
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} APIResponse{data=models.EventWithTags}
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ev, ok := h.loadEvent(rw, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	decorated, err := h.decorateEvents(r.Context(), currentUserID(r), []*models.Event{ev})
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(decorated[0])
}

// CreateEvent stores a user-submitted event.
//
// @Summary Create an event
// @Description Creates an event with source_type user. Unknown tags are created; tag failures are logged and skipped.
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UserEventRequest true "Event"
// @Success 201 {object} APIResponse{data=models.EventWithTags}
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UserEventRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	rec := &models.NewEvent{
		EventType:   req.EventType,
		Name:        req.Name,
		StartDate:   parseDate(req.StartDate),
		EndDate:     parseDate(req.EndDate),
		Description: req.Description,
		Location:    req.Location,
		SourceType:  models.SourceUser,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
	}
	rec.Normalize()
	if rec.Name == "" {
		rw.Error(http.StatusBadRequest, ErrCodeValidationFailed, "name is required")
		return
	}
	if !checkDateOrder(rw, rec.StartDate != nil && rec.EndDate != nil && rec.EndDate.Before(*rec.StartDate)) {
		return
	}

	ev, err := h.store.InsertEvent(r.Context(), rec)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	tags := h.attachTags(r.Context(), ev.ID, req.Tags)

	logging.Ctx(r.Context()).Info().
		Str("event_id", ev.ID).
		Str("user_id", currentUserID(r)).
		Msg("Event created")

	notFavorited := false
	rw.Created(&models.EventWithTags{Event: *ev, Tags: tags, IsFavorited: &notFavorited})
}

// attachTags creates or associates each tag. Failures are logged and the
// tag is left out.
func (h *Handler) attachTags(ctx context.Context, eventID string, names []string) []string {
	attached := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := h.store.EnsureTag(ctx, name)
		if err == nil {
			err = h.store.TagEvent(ctx, eventID, tag.ID)
		}
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("event_id", eventID).
				Str("tag", sanitizeLogValue(name)).
				Msg("Failed to associate tag")
			continue
		}
		attached = append(attached, tag.Name)
	}
	return attached
}

// UpdateEvent applies a partial update.
//
// @Summary Update an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body UpdateEventRequest true "Fields to change"
// @Success 200 {object} APIResponse{data=models.EventWithTags}
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")

	var req UpdateEventRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	if !validateOptionalURL(rw, "url", req.URL) || !validateOptionalURL(rw, "image_url", req.ImageURL) {
		return
	}

	upd := &models.EventUpdate{
		EventType:   req.EventType,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		URL:         req.URL,
		ImageURL:    req.ImageURL,
	}
	if req.StartDate != nil {
		upd.StartDate = parseDate(*req.StartDate)
	}
	if req.EndDate != nil {
		upd.EndDate = parseDate(*req.EndDate)
	}
	if upd.IsEmpty() {
		rw.BadRequest("No fields to update")
		return
	}

	current, ok := h.loadEvent(rw, r, id)
	if !ok {
		return
	}
	start, end := current.StartDate, current.EndDate
	if upd.StartDate != nil {
		start = upd.StartDate
	}
	if upd.EndDate != nil {
		end = upd.EndDate
	}
	if !checkDateOrder(rw, start != nil && end != nil && end.Before(*start)) {
		return
	}

	ev, err := h.store.UpdateEvent(r.Context(), id, upd)
	if errors.Is(err, database.ErrEventNotFound) {
		rw.NotFound("Event not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	decorated, err := h.decorateEvents(r.Context(), currentUserID(r), []*models.Event{ev})
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(decorated[0])
}

// DeleteEvent removes an event and everything attached to it.
//
// @Summary Delete an event
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")

	err := h.store.DeleteEvent(r.Context(), id)
	if errors.Is(err, database.ErrEventNotFound) {
		rw.NotFound("Event not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("event_id", id).
		Str("user_id", currentUserID(r)).
		Msg("Event deleted")
	rw.Success(map[string]string{"message": "Event deleted"})
}

// AddFavorite marks an event as a favorite of the caller.
//
// @Summary Favorite an event
// @Tags Favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /events/{id}/favorite [post]
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ev, ok := h.loadEvent(rw, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.store.AddFavorite(r.Context(), currentUserID(r), ev.ID); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]string{"message": "Added to favorites"})
}

// RemoveFavorite removes an event from the caller's favorites.
//
// @Summary Unfavorite an event
// @Tags Favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse "Not favorited"
// @Router /events/{id}/favorite [delete]
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	err := h.store.RemoveFavorite(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if errors.Is(err, database.ErrFavoriteNotFound) {
		rw.NotFound("Favorite not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]string{"message": "Removed from favorites"})
}

// loadEvent fetches an event, writing 404 or 500 on failure.
func (h *Handler) loadEvent(rw *ResponseWriter, r *http.Request, id string) (*models.Event, bool) {
	ev, err := h.store.GetEvent(r.Context(), id)
	if errors.Is(err, database.ErrEventNotFound) {
		rw.NotFound("Event not found")
		return nil, false
	}
	if err != nil {
		rw.DatabaseError(err)
		return nil, false
	}
	return ev, true
}

// decorateEvents attaches tags and, for an authenticated caller, the
// favorite flag. Lookup failures are returned so the caller answers 500;
// is_favorited is never guessed.
func (h *Handler) decorateEvents(ctx context.Context, userID string, events []*models.Event) ([]*models.EventWithTags, error) {
	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}

	tags, err := h.store.TagsForEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	var favorited map[string]bool
	if userID != "" {
		favorited, err = h.store.FavoritedSet(ctx, userID, ids)
		if err != nil {
			return nil, fmt.Errorf("load favorites: %w", err)
		}
	}

	result := make([]*models.EventWithTags, len(events))
	for i, ev := range events {
		item := &models.EventWithTags{Event: *ev, Tags: tags[ev.ID]}
		if item.Tags == nil {
			item.Tags = []string{}
		}
		if userID != "" {
			isFav := favorited[ev.ID]
			item.IsFavorited = &isFav
		}
		result[i] = item
	}
	return result, nil
}

func validateQuery(rw *ResponseWriter, query *EventListQuery) bool {
	if verr := validation.ValidateStruct(query); verr != nil {
		rw.ValidationError(verr)
		return false
	}
	return true
}

func checkDateOrder(rw *ResponseWriter, endBeforeStart bool) bool {
	if endBeforeStart {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
			"end_date must not be before start_date", map[string]interface{}{"field": "end_date", "tag": "gtefield"})
		return false
	}
	return true
}
