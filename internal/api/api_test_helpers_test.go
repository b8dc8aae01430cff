// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/eventhub/internal/audit"
	"github.com/tomtom215/eventhub/internal/auth"
	"github.com/tomtom215/eventhub/internal/authz"
	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/database"
	"github.com/tomtom215/eventhub/internal/models"
	syncpkg "github.com/tomtom215/eventhub/internal/sync"
	ws "github.com/tomtom215/eventhub/internal/websocket"
)

const (
	testJWTSecret   = "test-secret-that-is-at-least-32-characters"
	testAdminEmail  = "admin@example.com"
	testOrigin      = "http://localhost:3000"
	testPassword    = "correct-horse-battery"
	contentTypeJSON = "application/json"
)

// fakeSync is a SyncController with canned results.
type fakeSync struct {
	mu       sync.Mutex
	report   *syncpkg.RunReport
	err      error
	status   *syncpkg.Status
	lastSync time.Time
	calls    int
}

func (f *fakeSync) TriggerSync(context.Context, string) (*syncpkg.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.report, f.err
}

func (f *fakeSync) Status(context.Context) (*syncpkg.Status, error) {
	return f.status, nil
}

func (f *fakeSync) LastSyncTime() time.Time { return f.lastSync }

// testEnv is a fully wired API over an in-memory DuckDB.
type testEnv struct {
	t       *testing.T
	db      *database.DB
	sync    *fakeSync
	hub     *ws.Hub
	audit   *audit.Logger
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:         testJWTSecret,
			SessionTimeout:    time.Hour,
			RateLimitReqs:     1000,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
			CORSOrigins:       []string{testOrigin},
			AdminEmails:       []string{testAdminEmail},
		},
	}
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestEnv builds the router. wrap, when non-nil, decorates the store
// the handlers see.
func newTestEnv(t *testing.T, cfg *config.Config, wrap func(*database.DB) Store) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	var store Store = db
	if wrap != nil {
		store = wrap(db)
	}

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-hubDone
	})

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer("")
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	auditStore := audit.NewDuckDBStore(db.Conn())
	if err := auditStore.CreateTable(context.Background()); err != nil {
		t.Fatalf("audit CreateTable() error = %v", err)
	}
	auditLogger := audit.NewLogger(auditStore, audit.DefaultConfig())
	t.Cleanup(func() { _ = auditLogger.Close() })

	fs := &fakeSync{report: &syncpkg.RunReport{}, status: &syncpkg.Status{}}
	h := NewHandler(store, fs, hub, jwtManager, cfg,
		WithPasswordHasher(auth.NewPasswordHasher(bcrypt.MinCost)),
		WithAuditLogger(auditLogger))
	router := NewRouter(h,
		auth.NewMiddleware(jwtManager, WriteError),
		authz.NewMiddleware(enforcer, WriteError).WithDeniedHook(h.AuditAuthzDenied),
		NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)),
	)

	return &testEnv{t: t, db: db, sync: fs, hub: hub, audit: auditLogger, handler: router.SetupChi()}
}

// do sends a request through the router. body is JSON-encoded unless nil.
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", contentTypeJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and user.
func (e *testEnv) register(name, email string) (string, *models.User) {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: name, Email: email, Password: testPassword,
	})
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	decodeData(e.t, rec, &resp)
	return resp.Token, resp.User
}

// createEvent posts an event and returns it.
func (e *testEnv) createEvent(token string, req UserEventRequest) *models.EventWithTags {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/v1/events", token, req)
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("create event: status %d body %s", rec.Code, rec.Body.String())
	}
	var ev models.EventWithTags
	decodeData(e.t, rec, &ev)
	return &ev
}

// envelope mirrors APIResponse with raw data for decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return &env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("response not successful: %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if env.Error == nil {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
	return env.Error.Code
}
