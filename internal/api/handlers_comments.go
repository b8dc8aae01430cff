// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eventhub/internal/database"
	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/models"
)

// ListComments returns an event's comments with author name and avatar.
//
// @Summary List comments of an event
// @Tags Comments
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} APIResponse{data=[]models.CommentWithUser}
// @Failure 404 {object} APIResponse
// @Router /events/{id}/comments [get]
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ev, ok := h.loadEvent(rw, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	comments, err := h.store.ListComments(r.Context(), ev.ID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if comments == nil {
		comments = []*models.CommentWithUser{}
	}
	rw.Success(comments)
}

// CreateComment adds a comment to an event.
//
// @Summary Comment on an event
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} APIResponse{data=models.CommentWithUser}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse "Event not found"
// @Router /comments [post]
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req CreateCommentRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		rw.Error(http.StatusBadRequest, ErrCodeValidationFailed, "content is required")
		return
	}

	userID := currentUserID(r)
	comment, err := h.store.CreateComment(r.Context(), userID, req.EventID, content)
	if errors.Is(err, database.ErrEventNotFound) {
		rw.NotFound("Event not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	result := &models.CommentWithUser{Comment: *comment}
	if user, err := h.store.GetUser(r.Context(), userID); err == nil {
		result.UserName = user.Name
		result.UserAvatar = user.AvatarURL
	} else {
		logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", userID).Msg("Comment author lookup failed")
	}
	rw.Created(result)
}

// DeleteComment removes a comment. Only its author may delete it.
//
// @Summary Delete a comment
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} APIResponse
// @Failure 403 {object} APIResponse "Not the author"
// @Failure 404 {object} APIResponse
// @Router /comments/{id} [delete]
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")

	comment, ok := h.loadComment(rw, r, id)
	if !ok {
		return
	}
	if comment.UserID != currentUserID(r) {
		rw.Forbidden("You can only delete your own comments")
		return
	}

	err := h.store.DeleteComment(r.Context(), id)
	if errors.Is(err, database.ErrCommentNotFound) {
		rw.NotFound("Comment not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]string{"message": "Comment deleted"})
}

// ReportComment files a moderation report against a comment.
//
// @Summary Report a comment
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body ReportCommentRequest true "Reason"
// @Success 201 {object} APIResponse{data=models.Report}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /comments/{id}/report [post]
func (h *Handler) ReportComment(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ReportCommentRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	report, err := h.store.CreateReport(r.Context(), currentUserID(r), chi.URLParam(r, "id"), strings.TrimSpace(req.Reason))
	if errors.Is(err, database.ErrCommentNotFound) {
		rw.NotFound("Comment not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("comment_id", report.TargetCommentID).
		Str("reporter_id", report.ReporterID).
		Msg("Comment reported")
	rw.Created(report)
}

func (h *Handler) loadComment(rw *ResponseWriter, r *http.Request, id string) (*models.Comment, bool) {
	comment, err := h.store.GetComment(r.Context(), id)
	if errors.Is(err, database.ErrCommentNotFound) {
		rw.NotFound("Comment not found")
		return nil, false
	}
	if err != nil {
		rw.DatabaseError(err)
		return nil, false
	}
	return comment, true
}
