package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/gatewaykit/portalsync/pkg/accounts"
	"github.com/gatewaykit/portalsync/pkg/api"
	"github.com/gatewaykit/portalsync/pkg/audit"
	"github.com/gatewaykit/portalsync/pkg/cache"
	"github.com/gatewaykit/portalsync/pkg/config"
	"github.com/gatewaykit/portalsync/pkg/edge"
	"github.com/gatewaykit/portalsync/pkg/observability"
	"github.com/gatewaykit/portalsync/pkg/sync"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.ParsedLogLevel(), os.Stdout)
	metrics := observability.NewMetrics(nil)

	// Account database
	db, err := sql.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		logger.WithError(err).Error("Failed to open account database")
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Postgres.ConnLifetime)
	if err := db.Ping(); err != nil {
		logger.WithError(err).Error("Failed to ping account database")
		os.Exit(1)
	}
	accountStore := accounts.NewPostgresStore(db)

	// Entity cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	entityCache, err := cache.NewRedisCache(redisClient, cache.Config{
		TTL:       cfg.Cache.TTL,
		L1Entries: cfg.Cache.L1Entries,
	}, metrics)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize entity cache")
		os.Exit(1)
	}

	// Gateway management API client
	httpClient := &http.Client{Timeout: cfg.Edge.Timeout}
	edgeClient := edge.NewClient(cfg.Edge.BaseURL, cfg.Edge.Organization,
		cfg.Edge.Username, cfg.Edge.Password,
		edge.WithHTTPClient(httpClient),
		edge.WithCache(entityCache),
		edge.WithMetrics(metrics),
	)

	// Audit trail
	var auditLogger audit.Logger = audit.NopLogger{}
	if cfg.Audit.Enabled {
		fileLogger, err := audit.NewFileLogger(audit.FileLoggerConfig{
			BasePath: cfg.Audit.Dir,
			MaxSize:  cfg.Audit.MaxSize,
			MaxFiles: cfg.Audit.MaxFiles,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to initialize audit logger")
			os.Exit(1)
		}
		auditLogger = fileLogger
	}

	service := sync.NewService(edgeClient, entityCache, accountStore, auditLogger, logger, metrics)
	server := api.NewServer(service, logger, metrics)

	// Health and metrics server on a separate port for probes
	healthChecker := observability.NewHealthChecker(db, redisClient)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", healthChecker.Liveness)
	healthMux.HandleFunc("/readyz", healthChecker.Readiness)
	healthMux.Handle("/metrics", metrics.Handler())
	healthServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}
	go func() {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	// Scheduled reconciliation
	var stopReconciler func()
	if cfg.Reconciler.Enabled {
		reconciler := sync.NewReconciler(edgeClient, entityCache, accountStore, auditLogger, logger, metrics)
		reconciler.SetConcurrency(cfg.Reconciler.Concurrency)
		stop, err := startReconciler(reconciler, cfg.Reconciler.Schedule, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to schedule reconciler")
			os.Exit(1)
		}
		stopReconciler = stop
		logger.WithField("schedule", cfg.Reconciler.Schedule).Info("Reconciler scheduled")
	}

	// Reload the log level when the config file changes
	if *configPath != "" {
		watcher, err := watchConfig(*configPath, logger)
		if err != nil {
			logger.WithError(err).Warn("Config file watching disabled")
		} else {
			defer watcher.Close()
		}
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})

	go func() {
		logger.Infof("Portal sync server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown failed")
	}

	if stopReconciler != nil {
		stopReconciler()
	}
	if err := auditLogger.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close audit logger")
	}
	if err := db.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close account database")
	}
	if err := redisClient.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close redis client")
	}
	logger.Info("Shutdown complete")
}
