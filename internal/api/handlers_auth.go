// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/eventhub/internal/auth"
	"github.com/tomtom215/eventhub/internal/database"
	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/models"
)

// Register creates an account and returns a token for it.
//
// @Summary Register a user
// @Description Creates an account. Emails listed in security.admin_emails get the admin role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} APIResponse{data=AuthResponse}
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse "Email already registered"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RegisterRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			rw.Error(http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Password hashing failed")
		rw.InternalError("Failed to create account")
		return
	}

	role := models.RoleUser
	if h.config != nil && h.config.IsAdminEmail(req.Email) {
		role = models.RoleAdmin
	}

	user, err := h.store.CreateUser(r.Context(), &models.NewUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		AvatarURL:    req.AvatarURL,
		Region:       req.Region,
		Gender:       req.Gender,
		Role:         role,
	})
	if errors.Is(err, database.ErrEmailTaken) {
		rw.Conflict("Email already registered")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Msg("User registered")
	h.audit.LogUserCreated(r.Context(), user.ID, user.Email, user.Role, clientIP(r))

	resp, err := h.issueToken(user)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Token generation failed")
		rw.InternalError("Failed to generate authentication token")
		return
	}
	rw.Created(resp)
}

// Login verifies credentials and returns a token.
//
// @Summary Log in
// @Description Exchanges email and password for a JWT. Repeated failures lock the account temporarily.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} APIResponse{data=AuthResponse}
// @Failure 400 {object} APIResponse
// @Failure 401 {object} APIResponse "Invalid credentials"
// @Failure 429 {object} APIResponse "Account locked or rate limited"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	if !h.checkLockout(rw, r, req.Email) {
		return
	}

	user, ok := h.authenticateCredentials(rw, r, &req)
	if !ok {
		return
	}

	resp, err := h.issueToken(user)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Token generation failed")
		rw.InternalError("Failed to generate authentication token")
		return
	}
	rw.Success(resp)
}

// checkLockout rejects logins for a locked email.
func (h *Handler) checkLockout(rw *ResponseWriter, r *http.Request, email string) bool {
	locked, remaining := h.lockout.CheckLocked(email)
	if !locked {
		return true
	}
	h.audit.LogAuthFailure(r.Context(), email, clientIP(r), "account locked")
	rw.w.Header().Set("Retry-After", fmt.Sprintf("%.0f", remaining.Seconds()))
	rw.Error(http.StatusTooManyRequests, ErrCodeAccountLocked, "Too many failed login attempts, try again later")
	return false
}

// authenticateCredentials loads the user and verifies the password. Unknown
// email and wrong password produce the same response.
func (h *Handler) authenticateCredentials(rw *ResponseWriter, r *http.Request, req *LoginRequest) (*models.User, bool) {
	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		rw.DatabaseError(err)
		return nil, false
	}

	if user == nil || h.hasher.Verify(user.PasswordHash, req.Password) != nil {
		locked, duration := h.lockout.RecordFailure(req.Email)
		logging.Ctx(r.Context()).Warn().
			Bool("locked", locked).
			Msg("Failed login attempt")
		h.audit.LogAuthFailure(r.Context(), req.Email, clientIP(r), "invalid credentials")
		if locked {
			h.audit.LogAuthLockout(r.Context(), req.Email, clientIP(r), duration)
		}
		rw.Unauthorized("Invalid email or password")
		return nil, false
	}

	h.lockout.RecordSuccess(req.Email)
	h.audit.LogAuthSuccess(r.Context(), user.ID, user.Email, clientIP(r))
	return user, true
}

func (h *Handler) issueToken(user *models.User) (*AuthResponse, error) {
	token, expiresAt, err := h.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout acknowledges a logout. Tokens are stateless; clients discard them.
//
// @Summary Log out
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse
// @Failure 401 {object} APIResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logging.Ctx(r.Context()).Debug().Str("user_id", currentUserID(r)).Msg("User logged out")
	h.audit.LogLogout(r.Context(), currentUserID(r), clientIP(r))
	NewResponseWriter(w, r).Success(map[string]string{"message": "Logged out"})
}
