// Eventhub - Events Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventhub

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/eventhub/docs" // swagger docs
	"github.com/tomtom215/eventhub/internal/api"
	"github.com/tomtom215/eventhub/internal/audit"
	"github.com/tomtom215/eventhub/internal/auth"
	"github.com/tomtom215/eventhub/internal/authz"
	"github.com/tomtom215/eventhub/internal/config"
	"github.com/tomtom215/eventhub/internal/database"
	"github.com/tomtom215/eventhub/internal/eventbus"
	"github.com/tomtom215/eventhub/internal/logging"
	"github.com/tomtom215/eventhub/internal/supervisor"
	"github.com/tomtom215/eventhub/internal/supervisor/services"
	syncpkg "github.com/tomtom215/eventhub/internal/sync"
	ws "github.com/tomtom215/eventhub/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Eventhub stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires every component, serves until SIGINT or SIGTERM and releases
// resources in reverse order.
func run(cfg *config.Config) error {
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("nats", cfg.Messaging.NATSURL != "").
		Msg("Starting Eventhub")
	warnAboutSecurity(cfg)

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	var auditLogger *audit.Logger
	if cfg.Security.AuditEnabled {
		auditLogger, err = openAuditLog(db, cfg.Security.AuditRetentionDays)
		if err != nil {
			return err
		}
		defer func() { _ = auditLogger.Close() }()
	}

	bus, err := eventbus.New(cfg.Messaging)
	if err != nil {
		return fmt.Errorf("initialize event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	logging.Info().Str("backend", bus.Backend()).Msg("Event bus ready")

	cache, err := syncpkg.OpenEnrichmentCache(cfg.Enrichment.CachePath, cfg.Enrichment.CacheTTL)
	if err != nil {
		return fmt.Errorf("open enrichment cache: %w", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing enrichment cache")
		}
	}()

	httpClient := syncpkg.NewHTTPClient(cfg.Sync.HTTPTimeout)
	sources := syncpkg.NewSources(cfg, httpClient)
	if len(sources) == 0 {
		logging.Warn().Msg("No event sources enabled; sync runs will be empty")
	}
	coordinator := syncpkg.NewCoordinator(sources, db,
		syncpkg.WithEnricher(syncpkg.NewEnricherFromConfig(cfg.Enrichment, httpClient, cache)),
		syncpkg.WithStatusRecorder(db),
		syncpkg.WithPublisher(bus),
	)
	syncManager := syncpkg.NewManager(coordinator, db, cfg.Sync)

	wsHub := ws.NewHub()
	forwarder := eventbus.NewForwarder(bus, wsHub)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize JWT manager: %w", err)
	}
	enforcer, err := authz.NewEnforcer(cfg.Security.PolicyPath)
	if err != nil {
		return fmt.Errorf("initialize authorization: %w", err)
	}

	handler := api.NewHandler(db, syncManager, wsHub, jwtManager, cfg, api.WithAuditLogger(auditLogger))
	authzMiddleware := authz.NewMiddleware(enforcer, api.WriteError)
	if auditLogger != nil {
		authzMiddleware.WithDeniedHook(handler.AuditAuthzDenied)
	}
	router := api.NewRouter(handler,
		auth.NewMiddleware(jwtManager, api.WriteError),
		authzMiddleware,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Enrichment.CachePath != "" {
		tree.AddDataService(services.NewCacheGCService(cache, time.Hour))
	}
	if auditLogger != nil && cfg.Security.AuditRetentionDays > 0 {
		tree.AddDataService(services.NewAuditRetentionService(auditLogger, 24*time.Hour))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewForwarderService(forwarder))
	tree.AddMessagingService(services.NewSyncService(syncManager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().
		Str("addr", server.Addr).
		Int("sources", len(sources)).
		Str("schedule", cfg.Sync.EffectiveSchedule()).
		Msg("Services added to supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	stop()
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	return nil
}

// openAuditLog creates the audit_events table and starts the async writer.
func openAuditLog(db *database.DB, retentionDays int) (*audit.Logger, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := audit.NewDuckDBStore(db.Conn())
	if err := store.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("initialize audit log: %w", err)
	}
	logging.Info().Int("retention_days", retentionDays).Msg("Audit log enabled")
	return audit.NewLogger(store, &audit.Config{
		Enabled:       true,
		RetentionDays: retentionDays,
		BufferSize:    audit.DefaultConfig().BufferSize,
	}), nil
}

func warnAboutSecurity(cfg *config.Config) {
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
	}
	if len(cfg.Security.AdminEmails) == 0 {
		logging.Warn().Msg("No ADMIN_EMAILS configured; nobody can trigger a manual sync")
	}
}
