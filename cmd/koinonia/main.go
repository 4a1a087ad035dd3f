// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command koinonia serves the community API: public testimonies and
// prayer points with admin moderation, member posts and role management.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/koinonia/internal/cache"
	"github.com/olegiv/koinonia/internal/config"
	"github.com/olegiv/koinonia/internal/identity"
	"github.com/olegiv/koinonia/internal/logging"
	"github.com/olegiv/koinonia/internal/metrics"
	"github.com/olegiv/koinonia/internal/middleware"
	"github.com/olegiv/koinonia/internal/scheduler"
	"github.com/olegiv/koinonia/internal/session"
	"github.com/olegiv/koinonia/internal/store"
	"github.com/olegiv/koinonia/internal/version"
)

// Build-time variables injected via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// maxCacheEntries caps the in-memory listing cache.
const maxCacheEntries = 10000

// options are the command line flags.
type options struct {
	scan       bool
	grantAdmin string
}

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	var opts options
	flag.BoolVar(&opts.scan, "scan", false, "Report posts and submissions with script-like content, then exit")
	flag.StringVar(&opts.grantAdmin, "grant-admin", "", "Grant admin access to the existing user with this email, then exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Koinonia - community testimonies, prayer points and posts\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KOINONIA_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KOINONIA_IDENTITY_SECRET   Sign-in provider token key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KOINONIA_DB_PATH           SQLite database path (default: ./data/koinonia.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KOINONIA_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KOINONIA_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KOINONIA_ADMIN_EMAILS      Comma separated emails promoted to admin at startup\n")
		_, _ = fmt.Fprintf(os.Stderr, "  KOINONIA_REDIS_URL         Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info, opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info, opts options) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// WARN and ERROR records also go to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.EnsureAdmins(ctx, db, cfg.AdminEmails); err != nil {
		return fmt.Errorf("ensuring admin users: %w", err)
	}

	svc := newServices(db)

	switch {
	case opts.scan:
		return runScan(ctx, svc)
	case opts.grantAdmin != "":
		return runGrantAdmin(ctx, svc, opts.grantAdmin)
	}

	return serve(cfg, db, svc, info, logger)
}

// runScan prints the suspicious content report as JSON.
func runScan(ctx context.Context, svc *services) error {
	report, err := svc.scan.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scanning content: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "%d suspicious item(s) found\n", report.Total())
	return nil
}

func runGrantAdmin(ctx context.Context, svc *services, email string) error {
	user, err := svc.users.GrantAdmin(ctx, email)
	if err != nil {
		return fmt.Errorf("granting admin to %s: %w", email, err)
	}
	_, _ = fmt.Printf("%s (id %d) is an admin\n", user.Email, user.ID)
	return nil
}

// newScheduler adds the housekeeping jobs to a new scheduler without
// starting it.
func newScheduler(logger *slog.Logger, svc *services, purgeSchedule, scanSchedule string, retention time.Duration) (*scheduler.Scheduler, error) {
	sched := scheduler.New(logger)
	for _, job := range []scheduler.Job{
		scheduler.PurgeEventsJob(svc.events, purgeSchedule, retention),
		scheduler.ScanContentJob(svc.scan, scanSchedule),
	} {
		if err := sched.Add(job); err != nil {
			return nil, fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	return sched, nil
}

func serve(cfg *config.Config, db *sql.DB, svc *services, info version.Info, logger *slog.Logger) error {
	listingCache := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
		MaxSize:    maxCacheEntries,
	})
	defer func() { _ = listingCache.Close() }()

	m := metrics.New()
	svc.setMetrics(m)
	svc.moderation.SetCache(listingCache, cfg.CacheTTLDuration())
	svc.posts.SetCache(listingCache, cfg.CacheTTLDuration())

	retention := time.Duration(cfg.EventRetentionDays) * 24 * time.Hour
	sched, err := newScheduler(logger, svc, cfg.PurgeSchedule, cfg.ScanSchedule, retention)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	sessionManager := session.New(db, cfg.SessionTTL, cfg.IsDevelopment())

	r := newRouter(routerConfig{
		db:             db,
		services:       svc,
		sessionManager: sessionManager,
		verifier:       identity.NewVerifier(cfg.IdentitySecret, cfg.IdentityIssuer),
		metrics:        m,
		jobs:           sched.Registry(),
		version:        info,
		csrf:           middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.TrustedOrigins),
		requestTimeout: cfg.RequestTimeout,
		submitRate:     cfg.SubmitRate,
		submitBurst:    cfg.SubmitBurst,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("starting metrics server", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			slog.Warn("metrics server shutdown", "error", err)
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
