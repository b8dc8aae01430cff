// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*StartStopService)(nil)
	_ suture.Service = (*WebSocketHubService)(nil)
	_ suture.Service = (*CacheGCService)(nil)
)

// mockHTTPServer blocks in ListenAndServe until Shutdown.
type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	shutdownCount atomic.Int32
	started       chan struct{}
	stopCh        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{started: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	server := newMockHTTPServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	if server.shutdownCount.Load() != 1 {
		t.Errorf("Shutdown called %d times, want 1", server.shutdownCount.Load())
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	server := newMockHTTPServer()
	server.listenErr = errors.New("address in use")
	svc := NewHTTPServerService(server, 0)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, server.listenErr) {
		t.Errorf("Serve() = %v, want wrapped listen error", err)
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown timeout = %v", svc.shutdownTimeout)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}

type mockStartStopper struct {
	startErr error
	stopErr  error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (m *mockStartStopper) Start(context.Context) error {
	if m.startErr != nil {
		return m.startErr
	}
	m.started.Store(true)
	return nil
}

func (m *mockStartStopper) Stop() error {
	m.stopped.Store(true)
	return m.stopErr
}

func TestStartStopService(t *testing.T) {
	t.Run("starts and stops the component", func(t *testing.T) {
		comp := &mockStartStopper{}
		svc := NewSyncService(comp)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		deadline := time.Now().Add(time.Second)
		for !comp.started.Load() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if !comp.started.Load() {
			t.Fatal("component was not started")
		}

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if !comp.stopped.Load() {
			t.Error("component was not stopped")
		}
	})

	t.Run("start error is returned", func(t *testing.T) {
		comp := &mockStartStopper{startErr: errors.New("bad schedule")}
		err := NewForwarderService(comp).Serve(context.Background())
		if !errors.Is(err, comp.startErr) {
			t.Errorf("Serve() = %v, want start error", err)
		}
		if comp.stopped.Load() {
			t.Error("Stop called after failed Start")
		}
	})

	t.Run("stop error is returned", func(t *testing.T) {
		comp := &mockStartStopper{stopErr: errors.New("stuck")}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := NewSyncService(comp).Serve(ctx); !errors.Is(err, comp.stopErr) {
			t.Errorf("Serve() = %v, want stop error", err)
		}
	})

	t.Run("names", func(t *testing.T) {
		if got := NewSyncService(&mockStartStopper{}).String(); got != "sync-manager" {
			t.Errorf("sync name = %q", got)
		}
		if got := NewForwarderService(&mockStartStopper{}).String(); got != "event-forwarder" {
			t.Errorf("forwarder name = %q", got)
		}
	})
}

type mockHub struct {
	ran atomic.Bool
}

func (m *mockHub) RunWithContext(ctx context.Context) error {
	m.ran.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService(t *testing.T) {
	hub := &mockHub{}
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v", err)
	}
	if !hub.ran.Load() {
		t.Error("hub was not run")
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}
}

type mockCache struct {
	calls atomic.Int32
	err   error
}

func (m *mockCache) CollectGarbage() error {
	m.calls.Add(1)
	return m.err
}

func TestCacheGCService(t *testing.T) {
	cache := &mockCache{err: errors.New("disk full")}
	svc := NewCacheGCService(cache, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v", err)
	}
	// Errors do not stop the loop.
	if cache.calls.Load() < 2 {
		t.Errorf("CollectGarbage called %d times, want at least 2", cache.calls.Load())
	}

	if NewCacheGCService(cache, 0).interval != time.Hour {
		t.Error("default interval is not one hour")
	}
}

func TestAuditRetentionService(t *testing.T) {
	pruner := &mockCache{}
	svc := NewAuditRetentionService(pruner, 10*time.Millisecond)
	if svc.String() != "audit-retention" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)
	if pruner.calls.Load() == 0 {
		t.Error("pruner never ran")
	}
}
