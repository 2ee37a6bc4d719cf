// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
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

	"github.com/olegiv/salon-go/internal/cache"
	"github.com/olegiv/salon-go/internal/config"
	"github.com/olegiv/salon-go/internal/handler"
	"github.com/olegiv/salon-go/internal/logging"
	"github.com/olegiv/salon-go/internal/mail"
	"github.com/olegiv/salon-go/internal/media"
	"github.com/olegiv/salon-go/internal/middleware"
	"github.com/olegiv/salon-go/internal/scheduler"
	"github.com/olegiv/salon-go/internal/service"
	"github.com/olegiv/salon-go/internal/session"
	"github.com/olegiv/salon-go/internal/store"
	"github.com/olegiv/salon-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "salon - hair salon site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_DB_DRIVER        Database driver: sqlite|postgres (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_DB_PATH          SQLite database path (default: ./data/salon.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_DATABASE_URL     Postgres connection URL (postgres driver only)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_SITE_URL         Public site URL used in reset links\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_ADMIN_EMAIL      Admin account seeded at startup\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_ADMIN_PASSWORD   Password for the seeded admin account\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_SMTP_HOST        SMTP relay for reset emails (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SALON_REDIS_URL        Redis URL for shared caching (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Printf("salon %s\n", versionInfo)
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// parseLogLevel maps the configured level name to a slog level.
func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(versionInfo version.Info) error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	dialect, err := store.ParseDialect(cfg.DBDriver)
	if err != nil {
		return err
	}

	if dialect == store.DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		slog.Info("initializing database", "driver", dialect, "path", cfg.DBPath)
	} else {
		slog.Info("initializing database", "driver", dialect)
	}

	db, err := store.NewDB(dialect, cfg.DSN())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	queries := store.NewWithDialect(db, dialect)

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, queries))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, queries, store.SeedOptions{
		AdminEmail:      cfg.AdminEmail,
		AdminPassword:   cfg.AdminPassword,
		StarterServices: cfg.DoSeed,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if !cfg.SeedAdminEnabled() {
		slog.Warn("SALON_ADMIN_EMAIL or SALON_ADMIN_PASSWORD not set, no admin account was seeded")
	}

	sessionManager := session.New(db, dialect, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	cacheConfig := cache.DefaultConfig()
	cacheConfig.RedisURL = cfg.RedisURL
	cacheConfig.Prefix = cfg.CachePrefix
	cacheConfig.DefaultTTL = cfg.CacheDuration()
	cacheConfig.FallbackToMemory = true
	if cfg.UseRedisCache() {
		cacheConfig.Type = cache.CacheBackendRedis
	}
	cacheResult, err := cache.NewCacheWithInfo(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	contentCache := cacheResult.Cache
	defer func() { _ = contentCache.Close() }()
	switch {
	case cacheResult.IsFallback:
		slog.Warn("cache initialized", "backend", cacheResult.BackendType,
			"note", "Redis unavailable, using fallback", "error", cacheResult.Err)
	case cacheResult.BackendType == cache.CacheBackendRedis:
		slog.Info("cache initialized", "backend", cacheResult.BackendType, "url", cache.SanitizeRedisURL(cfg.RedisURL))
	default:
		slog.Info("cache initialized", "backend", cacheResult.BackendType)
	}

	mailer := mail.NewMailer(cfg, logger)
	eventService := service.NewEventService(queries, logger)
	authService := service.NewAuthService(queries, mailer, service.AuthConfig{
		SiteURL:           cfg.SiteURL,
		ResetTokenTTL:     cfg.ResetTokenTTL,
		RequireResetToken: cfg.RequireResetToken,
	}, logger)
	mediaProcessor := media.NewProcessor(cfg.MediaMaxBytes, cfg.MediaMaxDimension)
	mediaProcessor.MaxPixels = cfg.MediaMaxPixels
	contentService := service.NewContentService(queries, contentCache, mediaProcessor,
		service.ContentLimits{MaxServices: cfg.MaxServices, MaxGalleryItems: cfg.MaxGalleryItems},
		cfg.CacheDuration(), logger)

	adminCookie := middleware.NewAdminCookie(cfg.AdminCookie, cfg.AdminCookieMaxAge, cfg.IsDevelopment())

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// 10 requests per second with burst of 20 per IP across the API
	apiLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	// One review every 10 seconds per IP, burst of 3
	reviewLimiter := middleware.NewGlobalRateLimiter(0.1, 3)

	sched := scheduler.New(scheduler.Config{
		Tokens:       authService,
		Events:       eventService,
		RateLimiters: []scheduler.LimiterCleaner{apiLimiter, reviewLimiter},
	}, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := newRouter(routerConfig{
		IsDevelopment:   cfg.IsDevelopment(),
		SiteURL:         cfg.SiteURL,
		SessionSecret:   []byte(cfg.SessionSecret),
		SessionManager:  sessionManager,
		AdminCookie:     adminCookie,
		LoginProtection: loginProtection,
		APILimiter:      apiLimiter,
		ReviewLimiter:   reviewLimiter,
		Handlers: handlers{
			Admin:    handler.NewAdminHandler(adminCookie),
			Auth:     handler.NewAuthHandler(authService, eventService, sessionManager, adminCookie, loginProtection),
			Services: handler.NewServicesHandler(contentService, eventService, sessionManager),
			Gallery:  handler.NewGalleryHandler(contentService, eventService, sessionManager),
			Reviews:  handler.NewReviewsHandler(contentService, eventService),
			Health:   handler.NewHealthHandler(db, contentCache, adminCookie, versionInfo.Version),
		},
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Media uploads arrive as large JSON bodies
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
