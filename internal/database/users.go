// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

const userColumns = `id, name, email, password_hash, avatar_url, region, gender, profile, role, created_at`

func scanUser(s rowScanner) (*models.User, error) {
	var (
		u                                   models.User
		avatar, region, gender, profileText sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &avatar, &region, &gender,
		&profileText, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.AvatarURL = avatar.String
	u.Region = region.String
	u.Gender = gender.String
	u.Profile = profileText.String
	return &u, nil
}

// CreateUser inserts a new account. Returns ErrEmailTaken when the email is
// already registered.
func (db *DB) CreateUser(ctx context.Context, nu *models.NewUser) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	role := nu.Role
	if role == "" {
		role = models.RoleUser
	}
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         nu.Name,
		Email:        strings.ToLower(strings.TrimSpace(nu.Email)),
		PasswordHash: nu.PasswordHash,
		AvatarURL:    nu.AvatarURL,
		Region:       nu.Region,
		Gender:       nu.Gender,
		Role:         role,
		CreatedAt:    now(),
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, nullableString(u.AvatarURL), nullableString(u.Region),
		nullableString(u.Gender), nil, u.Role, u.CreatedAt)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (db *DB) queryOneUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	start := time.Now()
	u, err := scanUser(db.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("get", "users", time.Since(start), nil)
		return nil, ErrUserNotFound
	}
	metrics.RecordDBQuery("get", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the user with the given email or ErrUserNotFound.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.queryOneUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
}

// GetUser returns the user with the given ID or ErrUserNotFound.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.queryOneUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// UpdateUser applies a partial profile update and returns the updated user.
func (db *DB) UpdateUser(ctx context.Context, id string, upd *models.UserUpdate) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		sets []string
		args []interface{}
	)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		sets = append(sets, col+" = ?")
		if col == "name" {
			args = append(args, *v)
			return
		}
		args = append(args, nullableString(*v))
	}
	add("name", upd.Name)
	add("avatar_url", upd.AvatarURL)
	add("region", upd.Region)
	add("gender", upd.Gender)
	add("profile", upd.Profile)

	if len(sets) > 0 {
		args = append(args, id)
		start := time.Now()
		res, err := db.conn.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		metrics.RecordDBQuery("update", "users", time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrUserNotFound
		}
	}
	return db.queryOneUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}
