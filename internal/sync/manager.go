// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/metrics"
	"github.com/tomtom215/eventhub/internal/models"
)

// Sync triggers recorded in metrics and logs.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
	TriggerStartup   = "startup"
)

// Runner executes one sync run. Implemented by *Coordinator.
type Runner interface {
	Run(ctx context.Context) (*RunReport, error)
}

// StatusLister reads the persisted per-source status.
type StatusLister interface {
	ListSourceStatus(ctx context.Context) ([]models.SourceStatus, error)
}

// Status is the admin view of the sync engine.
type Status struct {
	LastSync   *time.Time            `json:"last_sync"`
	InProgress bool                  `json:"in_progress"`
	LastRun    *RunReport            `json:"last_run,omitempty"`
	Sources    []models.SourceStatus `json:"sources"`
}

// Manager serializes sync runs and schedules them.
//
// Thread safety:
//   - runMu: advisory lock held for the duration of a run (TryLock only)
//   - mu: protects running, lastSync and lastReport
type Manager struct {
	runner   Runner
	statuses StatusLister
	cfg      config.SyncConfig

	runMu sync.Mutex

	mu         sync.RWMutex
	running    bool
	inProgress bool
	lastSync   time.Time
	lastReport *RunReport

	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a Manager. statuses may be nil.
func NewManager(runner Runner, statuses StatusLister, cfg config.SyncConfig) *Manager {
	return &Manager{
		runner:   runner,
		statuses: statuses,
		cfg:      cfg,
	}
}

// Start registers the schedule and, if configured, launches a startup run.
// It returns immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	var c *cron.Cron
	if schedule := m.cfg.EffectiveSchedule(); schedule != "" {
		logger := cronLogger{}
		c = cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
		if _, err := c.AddFunc(schedule, func() { m.runBackground(runCtx, TriggerScheduled) }); err != nil {
			m.mu.Unlock()
			cancel()
			return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
		}
		logging.Info().Str("schedule", schedule).Msg("Sync schedule registered")
	} else {
		logging.Info().Msg("No sync schedule configured; sync runs on demand only")
	}

	m.running = true
	m.cancel = cancel
	m.cron = c
	m.mu.Unlock()

	if c != nil {
		c.Start()
	}

	if m.cfg.RunOnStartup {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runBackground(runCtx, TriggerStartup)
		}()
	}

	logging.Info().Msg("Sync manager started")
	return nil
}

// Stop halts the scheduler, cancels an in-flight background run and waits
// for it to return.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	c, cancel := m.cron, m.cancel
	m.cron, m.cancel = nil, nil
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")

	cancel()
	if c != nil {
		<-c.Stop().Done()
	}
	m.wg.Wait()

	logging.Info().Msg("Sync manager stopped")
	return nil
}

// TriggerSync runs one sync now. It returns ErrSyncInProgress without
// waiting when another run holds the lock.
func (m *Manager) TriggerSync(ctx context.Context, trigger string) (*RunReport, error) {
	if !m.runMu.TryLock() {
		metrics.RecordSyncSkipped(trigger)
		return nil, ErrSyncInProgress
	}
	defer m.runMu.Unlock()

	m.setInProgress(true)
	defer m.setInProgress(false)

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logging.Ctx(ctx).Info().Str("trigger", trigger).Msg("External event sync started")

	report, err := m.runner.Run(ctx)
	if err != nil {
		return nil, err
	}

	metrics.RecordSyncRun(trigger, metrics.SyncRunSummary{
		Duration:    report.Duration,
		Inserted:    report.Inserted,
		Skipped:     report.Skipped,
		StoreErrors: report.StoreErrors,
	})

	m.mu.Lock()
	m.lastSync = time.Now()
	m.lastReport = report
	m.mu.Unlock()
	return report, nil
}

// runBackground runs a scheduled or startup sync, skipping it when a run
// is already in progress.
func (m *Manager) runBackground(ctx context.Context, trigger string) {
	if _, err := m.TriggerSync(ctx, trigger); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			logging.Info().Str("trigger", trigger).Msg("Sync already in progress, skipping")
			return
		}
		logging.Warn().Err(err).Str("trigger", trigger).Msg("Background sync failed")
	}
}

func (m *Manager) setInProgress(v bool) {
	m.mu.Lock()
	m.inProgress = v
	m.mu.Unlock()
}

// InProgress reports whether a run currently holds the lock.
func (m *Manager) InProgress() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inProgress
}

// LastSyncTime returns the completion time of the last run, or the zero time.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// Status returns the engine state together with the persisted per-source status.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	m.mu.RLock()
	st := &Status{
		InProgress: m.inProgress,
		LastRun:    m.lastReport,
		Sources:    []models.SourceStatus{},
	}
	if !m.lastSync.IsZero() {
		t := m.lastSync
		st.LastSync = &t
	}
	m.mu.RUnlock()

	if m.statuses != nil {
		sources, err := m.statuses.ListSourceStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load source status: %w", err)
		}
		st.Sources = sources
	}
	return st, nil
}

// cronLogger routes scheduler logs through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug().Fields(keysAndValues).Str("component", "cron").Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error().Err(err).Fields(keysAndValues).Str("component", "cron").Msg(msg)
}
