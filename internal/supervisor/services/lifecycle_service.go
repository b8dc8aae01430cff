// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package services

import (
	"context"
	"fmt"
)

// StartStopper is a component with a non-blocking Start and a blocking
// Stop. *sync.Manager and *eventbus.Forwarder satisfy it.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// StartStopService adapts a StartStopper to suture.Service: Start, wait
// for cancellation, Stop.
type StartStopService struct {
	component StartStopper
	name      string
}

// NewSyncService supervises the sync manager's scheduler.
func NewSyncService(manager StartStopper) *StartStopService {
	return &StartStopService{component: manager, name: "sync-manager"}
}

// NewForwarderService supervises the bus to WebSocket forwarder.
func NewForwarderService(forwarder StartStopper) *StartStopService {
	return &StartStopService{component: forwarder, name: "event-forwarder"}
}

// Serve implements suture.Service. A Start error is returned at once so
// suture restarts the service with backoff.
func (s *StartStopService) Serve(ctx context.Context) error {
	if err := s.component.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.component.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

func (s *StartStopService) String() string {
	return s.name
}
