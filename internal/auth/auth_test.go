// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/models"
)

const testSecret = "test-secret-that-is-at-least-32-characters-long"

func newTestJWTManager(t *testing.T, timeout time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: timeout})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func testUser() *models.User {
	return &models.User{ID: "user-1", Email: "alice@example.com", Role: models.RoleUser}
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Error("NewJWTManager() with empty secret: expected error")
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)

	token, expiresAt, err := m.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("expiresAt = %v, want about one hour from now", expiresAt)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID() != "user-1" || claims.Email != "alice@example.com" || claims.IsAdmin() {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	valid, _, err := m.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Hour)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewJWTManager(&config.SecurityConfig{JWTSecret: strings.Repeat("x", 40), SessionTimeout: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	foreign, _, err := other.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: tokenIssuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"alg none", noneToken},
		{"no subject", noSubject},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"garbage", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateToken(tt.token); err == nil {
				t.Error("ValidateToken() expected error")
			}
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	if _, err := h.Hash("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Hash(short) error = %v, want ErrPasswordTooShort", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Hash(long) error = %v, want ErrPasswordTooLong", err)
	}

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("Hash() returned the plaintext")
	}
	if err := h.Verify(hash, "correct horse"); err != nil {
		t.Errorf("Verify(correct) error = %v", err)
	}
	if err := h.Verify(hash, "battery staple"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify(wrong) error = %v, want ErrPasswordMismatch", err)
	}
	if err := h.Verify("not-a-hash", "correct horse"); err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify(corrupt hash) error = %v, want a non-mismatch error", err)
	}

	if NewPasswordHasher(0).cost != DefaultBcryptCost {
		t.Error("out of range cost did not fall back to the default")
	}
}

func TestMiddleware(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	token, _, err := m.GenerateToken(testUser())
	if err != nil {
		t.Fatal(err)
	}
	mw := NewMiddleware(m, nil)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			_, _ = w.Write([]byte(claims.UserID()))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})

	tests := []struct {
		name       string
		optional   bool
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"required valid", false, "Bearer " + token, "", http.StatusOK, "user-1"},
		{"required lowercase scheme", false, "bearer " + token, "", http.StatusOK, "user-1"},
		{"required missing", false, "", "", http.StatusUnauthorized, ""},
		{"required bad scheme", false, "Basic abc", "", http.StatusUnauthorized, ""},
		{"required invalid", false, "Bearer nope", "", http.StatusUnauthorized, ""},
		{"required query token", false, "", token, http.StatusOK, "user-1"},
		{"optional anonymous", true, "", "", http.StatusOK, "anonymous"},
		{"optional valid", true, "Bearer " + token, "", http.StatusOK, "user-1"},
		{"optional invalid", true, "Bearer nope", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := mw.Authenticate(echo)
			if tt.optional {
				handler = mw.OptionalAuth(echo)
			}

			target := "/"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestMiddleware_CustomErrorWriter(t *testing.T) {
	var gotStatus int
	var gotCode string
	mw := NewMiddleware(newTestJWTManager(t, time.Hour), func(w http.ResponseWriter, _ *http.Request, status int, code, _ string) {
		gotStatus, gotCode = status, code
		w.WriteHeader(status)
	})

	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if gotStatus != http.StatusUnauthorized || gotCode != "UNAUTHORIZED" {
		t.Errorf("error writer got %d %q", gotStatus, gotCode)
	}
}

func TestLockoutManager(t *testing.T) {
	m := NewLockoutManager(LockoutConfig{MaxAttempts: 3, LockoutDuration: time.Minute, MaxLockoutDuration: 3 * time.Minute, Enabled: true})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if locked, _ := m.RecordFailure("Alice@Example.com"); locked {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	locked, d := m.RecordFailure("alice@example.com")
	if !locked || d != time.Minute {
		t.Fatalf("third failure = %v, %v; want locked for 1m", locked, d)
	}
	if locked, remaining := m.CheckLocked(" ALICE@example.com "); !locked || remaining != time.Minute {
		t.Errorf("CheckLocked() = %v, %v", locked, remaining)
	}

	now = now.Add(2 * time.Minute)
	if locked, _ := m.CheckLocked("alice@example.com"); locked {
		t.Error("still locked after the lockout period")
	}

	// Backoff doubles, then caps.
	for _, want := range []time.Duration{2 * time.Minute, 3 * time.Minute} {
		var d time.Duration
		for i := 0; i < 3; i++ {
			_, d = m.RecordFailure("alice@example.com")
		}
		if d != want {
			t.Errorf("lockout duration = %v, want %v", d, want)
		}
		now = now.Add(want)
	}

	m.RecordSuccess("alice@example.com")
	if locked, _ := m.RecordFailure("alice@example.com"); locked {
		t.Error("success did not reset the failure count")
	}

	disabled := NewLockoutManager(LockoutConfig{MaxAttempts: 1})
	if locked, _ := disabled.RecordFailure("bob@example.com"); locked {
		t.Error("disabled lockout manager locked an account")
	}
}
