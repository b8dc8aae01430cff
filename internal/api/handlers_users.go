// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/eventhub/internal/database"
	"github.com/tomtom215/eventhub/internal/models"
)

// GetProfile returns the caller's profile.
//
// @Summary Get own profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=models.User}
// @Failure 401 {object} APIResponse
// @Failure 404 {object} APIResponse "Account deleted"
// @Router /users/me [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	user, err := h.store.GetUser(r.Context(), currentUserID(r))
	if errors.Is(err, database.ErrUserNotFound) {
		rw.NotFound("User not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(user)
}

// UpdateProfile changes the caller's profile fields.
//
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} APIResponse{data=models.User}
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /users/me [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req UpdateUserRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	if !validateOptionalURL(rw, "avatar_url", req.AvatarURL) {
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			rw.Error(http.StatusBadRequest, ErrCodeValidationFailed, "name must not be empty")
			return
		}
		req.Name = &name
	}

	user, err := h.store.UpdateUser(r.Context(), currentUserID(r), &models.UserUpdate{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Region:    req.Region,
		Gender:    req.Gender,
		Profile:   req.Profile,
	})
	if errors.Is(err, database.ErrUserNotFound) {
		rw.NotFound("User not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	h.audit.LogUserModified(r.Context(), user.ID, clientIP(r))
	rw.Success(user)
}

// ListFavorites returns the caller's favorite events.
//
// @Summary List own favorites
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=[]models.EventWithTags}
// @Failure 401 {object} APIResponse
// @Router /users/me/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := currentUserID(r)

	events, err := h.store.ListFavoriteEvents(r.Context(), userID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	decorated, err := h.decorateEvents(r.Context(), userID, events)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(decorated)
}
