// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/eventhub/internal/logging"
)

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of consecutive failures before lockout.
	MaxAttempts int

	// LockoutDuration is the first lockout period. Each further lockout
	// doubles it, capped at MaxLockoutDuration.
	LockoutDuration    time.Duration
	MaxLockoutDuration time.Duration

	Enabled bool
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
		Enabled:            true,
	}
}

type lockoutEntry struct {
	failedAttempts int
	lockoutCount   int
	lockedUntil    time.Time
}

// LockoutManager tracks failed logins per email in memory.
type LockoutManager struct {
	config LockoutConfig
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*lockoutEntry
}

// NewLockoutManager creates a lockout manager.
func NewLockoutManager(config LockoutConfig) *LockoutManager {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = 15 * time.Minute
	}
	if config.MaxLockoutDuration < config.LockoutDuration {
		config.MaxLockoutDuration = config.LockoutDuration
	}
	return &LockoutManager{
		config:  config,
		now:     time.Now,
		entries: make(map[string]*lockoutEntry),
	}
}

func lockoutKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckLocked reports whether email is locked and for how much longer.
func (m *LockoutManager) CheckLocked(email string) (bool, time.Duration) {
	if !m.config.Enabled {
		return false, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[lockoutKey(email)]
	if !ok {
		return false, 0
	}
	now := m.now()
	if now.Before(entry.lockedUntil) {
		return true, entry.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts a failed login and reports whether it locked the
// account.
func (m *LockoutManager) RecordFailure(email string) (bool, time.Duration) {
	if !m.config.Enabled {
		return false, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := lockoutKey(email)
	entry, ok := m.entries[key]
	if !ok {
		entry = &lockoutEntry{}
		m.entries[key] = entry
	}

	entry.failedAttempts++
	if entry.failedAttempts < m.config.MaxAttempts {
		return false, 0
	}

	duration := m.lockoutDuration(entry.lockoutCount)
	entry.lockoutCount++
	entry.failedAttempts = 0
	entry.lockedUntil = m.now().Add(duration)

	logging.Warn().
		Str("email", key).
		Int("lockout_count", entry.lockoutCount).
		Dur("duration", duration).
		Msg("Account locked after repeated failed logins")
	return true, duration
}

// RecordSuccess clears the failure history for email.
func (m *LockoutManager) RecordSuccess(email string) {
	m.mu.Lock()
	delete(m.entries, lockoutKey(email))
	m.mu.Unlock()
}

func (m *LockoutManager) lockoutDuration(previousLockouts int) time.Duration {
	d := m.config.LockoutDuration
	for i := 0; i < previousLockouts; i++ {
		d *= 2
		if d >= m.config.MaxLockoutDuration {
			return m.config.MaxLockoutDuration
		}
	}
	return d
}
